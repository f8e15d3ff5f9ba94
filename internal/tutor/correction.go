package tutor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Marker separates the conversational part of a reply from its corrections.
const Marker = "[Correction]"

// correctionPattern matches one block, the text following a single marker.
// It captures the original phrase, the corrected phrase and the explanation
// up to the end of the line.
var correctionPattern = regexp.MustCompile(
	`(?s)^ You said "(.*?)" - it should be "(.*?)"\. This is because(.*?)(?:\n|$)`)

// Extractor splits tutor replies into display text and corrections.
type Extractor struct {
	Classifiers []Classifier

	// Structured makes Extract try the JSON reply shape first.
	Structured bool
}

// NewExtractor returns an Extractor with the default classification rules.
func NewExtractor(structured bool) *Extractor {
	return &Extractor{Classifiers: DefaultClassifiers(), Structured: structured}
}

// Extract parses one raw model reply. Without a marker the reply is returned
// unchanged as display text. Correction blocks that do not match the
// expected wording are skipped.
func (e *Extractor) Extract(raw string) Reply {
	if e.Structured {
		if r, ok := e.extractStructured(raw); ok {
			return r
		}
	}

	idx := strings.Index(raw, Marker)
	if idx < 0 {
		return Reply{Display: raw}
	}

	remainder := raw[idx:]
	r := Reply{
		Display:        strings.TrimSpace(raw[:idx]),
		CorrectionText: strings.TrimSpace(remainder[len(Marker):]),
	}
	for _, block := range strings.Split(remainder[len(Marker):], Marker) {
		m := correctionPattern.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		explanation := strings.TrimSpace(m[3])
		r.Mistakes = append(r.Mistakes, Mistake{
			Original:    strings.TrimSpace(m[1]),
			Corrected:   strings.TrimSpace(m[2]),
			Explanation: explanation,
			Type:        RunClassifiers(e.Classifiers, explanation),
		})
	}
	return r
}

type structuredReply struct {
	Reply       *string `json:"reply"`
	Corrections []struct {
		Original    string `json:"original"`
		Corrected   string `json:"corrected"`
		Explanation string `json:"explanation"`
	} `json:"corrections"`
}

func (e *Extractor) extractStructured(raw string) (Reply, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return Reply{}, false
	}
	var sr structuredReply
	if err := json.Unmarshal([]byte(trimmed), &sr); err != nil || sr.Reply == nil {
		return Reply{}, false
	}

	r := Reply{Display: strings.TrimSpace(*sr.Reply)}
	var blocks []string
	for _, c := range sr.Corrections {
		original := strings.TrimSpace(c.Original)
		corrected := strings.TrimSpace(c.Corrected)
		if original == "" || corrected == "" {
			continue
		}
		explanation := strings.TrimSpace(c.Explanation)
		r.Mistakes = append(r.Mistakes, Mistake{
			Original:    original,
			Corrected:   corrected,
			Explanation: explanation,
			Type:        RunClassifiers(e.Classifiers, explanation),
		})
		blocks = append(blocks, fmt.Sprintf("You said %q - it should be %q. This is because %s", original, corrected, explanation))
	}
	r.CorrectionText = strings.Join(blocks, "\n")
	return r, true
}

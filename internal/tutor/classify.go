package tutor

import "strings"

// Classifier assigns a mistake type from the tutor's explanation.
// It returns ("", false) when its rule does not apply.
type Classifier interface {
	Name() string
	Classify(explanation string) (MistakeType, bool)
}

// KeywordClassifier matches when the lowercased explanation contains any of
// its keywords.
type KeywordClassifier struct {
	Type     MistakeType
	Keywords []string
}

func (k KeywordClassifier) Name() string { return "keyword:" + strings.ToLower(string(k.Type)) }

func (k KeywordClassifier) Classify(explanation string) (MistakeType, bool) {
	lower := strings.ToLower(explanation)
	for _, kw := range k.Keywords {
		if strings.Contains(lower, kw) {
			return k.Type, true
		}
	}
	return "", false
}

// DefaultClassifiers returns the keyword rules in priority order. An
// explanation mentioning both grammar and vocabulary is Grammar.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		KeywordClassifier{Type: Grammar, Keywords: []string{"grammar"}},
		KeywordClassifier{Type: Vocabulary, Keywords: []string{"vocabulary", "word"}},
		KeywordClassifier{Type: Pronunciation, Keywords: []string{"pronunciation"}},
		KeywordClassifier{Type: Syntax, Keywords: []string{"syntax", "structure"}},
	}
}

// RunClassifiers returns the type from the first matching classifier, or
// Other when none match.
func RunClassifiers(classifiers []Classifier, explanation string) MistakeType {
	for _, c := range classifiers {
		if t, ok := c.Classify(explanation); ok {
			return t
		}
	}
	return Other
}

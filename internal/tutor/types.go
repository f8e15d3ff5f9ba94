package tutor

import (
	"fmt"
	"strings"
)

// Level is the learner's self-reported proficiency.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists the accepted proficiency levels in display order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// ParseLevel accepts a level name in any letter case.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Levels {
		if l == v {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown proficiency level %q (want beginner, intermediate or advanced)", s)
}

// Title returns the level capitalised for display.
func (l Level) Title() string {
	if l == "" {
		return ""
	}
	return strings.ToUpper(string(l[:1])) + string(l[1:])
}

// MistakeType is the coarse category assigned to a correction.
type MistakeType string

const (
	Grammar       MistakeType = "Grammar"
	Vocabulary    MistakeType = "Vocabulary"
	Pronunciation MistakeType = "Pronunciation"
	Syntax        MistakeType = "Syntax"
	Other         MistakeType = "Other"
)

// Profile is the learner's setup for one session. It does not change after
// the conversation is configured.
type Profile struct {
	NativeLanguage   string `json:"native_language"`
	LearningLanguage string `json:"learning_language"`
	Level            Level  `json:"proficiency_level"`
	Scenario         string `json:"scenario"`
}

// Validate reports the first missing or invalid field.
func (p Profile) Validate() error {
	switch {
	case strings.TrimSpace(p.LearningLanguage) == "" || strings.TrimSpace(p.NativeLanguage) == "":
		return &ConfigurationError{Reason: "Please fill in all required fields"}
	case strings.TrimSpace(p.Scenario) == "":
		return &ConfigurationError{Reason: "a conversation scenario is required"}
	}
	if _, err := ParseLevel(string(p.Level)); err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}
	return nil
}

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation history. Assistant turns hold the
// raw model reply, correction segment included.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Mistake is one correction the tutor made during the session.
type Mistake struct {
	Original    string      `json:"original"`
	Corrected   string      `json:"corrected"`
	Explanation string      `json:"explanation"`
	Type        MistakeType `json:"type"`
}

// Reply is what the learner sees for one tutor turn.
type Reply struct {
	Display        string    `json:"display"`
	CorrectionText string    `json:"correction,omitempty"`
	Mistakes       []Mistake `json:"mistakes"`
}

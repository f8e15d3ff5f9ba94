package tutor

import "github.com/abhisek/parlo/internal/llm"

// TutorReplySchema is the structured reply shape requested when
// Config.Structured is set.
var TutorReplySchema = &llm.Schema{
	Name:        "tutor-reply",
	Description: "A conversational tutor reply with the learner's mistakes listed separately",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reply": map[string]any{
				"type":        "string",
				"description": "The tutor's conversational message in the language being learned",
			},
			"corrections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"original": map[string]any{
							"type":        "string",
							"description": "The incorrect phrase exactly as the learner wrote it",
						},
						"corrected": map[string]any{
							"type":        "string",
							"description": "The corrected phrase",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why it was wrong, naming grammar, vocabulary, pronunciation or syntax",
						},
					},
					"required":             []any{"original", "corrected", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"reply", "corrections"},
		"additionalProperties": false,
	},
}

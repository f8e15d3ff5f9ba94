package tutor

import (
	"fmt"
	"strings"
)

// OpeningLine is the learner message that asks the tutor to speak first.
const OpeningLine = "Let's start our conversation"

func buildSystemPrompt(p Profile, structured bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a helpful language tutor. The user is a %s level speaker of %s and their native language is %s.\n\n",
		p.Level, p.LearningLanguage, p.NativeLanguage)
	fmt.Fprintf(&b, "The conversation scene is: %s\n\n", p.Scenario)
	fmt.Fprintf(&b, "Please chat with the user in %s. Your task is to:\n", p.LearningLanguage)
	fmt.Fprintf(&b, "1. Help them practice %s in a natural conversation\n", p.LearningLanguage)
	b.WriteString("2. Correct mistakes they make, but in a gentle way\n")
	fmt.Fprintf(&b, "3. Use appropriate vocabulary for their %s level\n", p.Level)
	fmt.Fprintf(&b, "4. Start the conversation with a brief introduction and question in %s\n\n", p.LearningLanguage)

	if structured {
		b.WriteString(`Reply with a JSON object only. Put your conversational message in "reply". ` +
			`For every mistake in the user's last message add an entry to "corrections" with the ` +
			`incorrect phrase in "original", the fixed phrase in "corrected" and a short reason in ` +
			`"explanation" that names the kind of mistake (grammar, vocabulary, pronunciation, syntax). ` +
			`Leave "corrections" empty when there is nothing to correct.`)
		return b.String()
	}

	b.WriteString("When you detect a mistake, format your response like this:\n")
	b.WriteString("\"Your message here...\"\n\n")
	fmt.Fprintf(&b, "%s You said \"incorrect phrase\" - it should be \"correct phrase\". This is because...\n\n", Marker)
	fmt.Fprintf(&b, "Use %s tag only when identifying mistakes.", Marker)
	return b.String()
}

const summaryIntro = "Here's a summary of the mistakes you made during our conversation:\n\n"

func buildSummaryPrompt(p Profile, report string) string {
	return fmt.Sprintf(`The user is learning %s at a %s level.
Here are the mistakes they made in our conversation:

%s

Based on these mistakes, provide 3-5 focused areas for improvement and specific
exercises or resources they could use to work on these areas. Be specific and helpful.`,
		p.LearningLanguage, p.Level, report)
}

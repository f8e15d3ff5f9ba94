package tutor

import (
	"context"
	"strings"
	"testing"

	"github.com/abhisek/parlo/internal/llm"
)

func TestRenderReport_GroupsInFirstSeenOrder(t *testing.T) {
	mistakes := []Mistake{
		{Original: "a1", Corrected: "b1", Type: Vocabulary},
		{Original: "a2", Corrected: "b2", Type: Grammar},
		{Original: "a3", Corrected: "b3", Type: Vocabulary},
		{Original: "a4", Corrected: "b4", Type: Other},
		{Original: "a5", Corrected: "b5", Type: Grammar},
	}

	got := RenderReport(mistakes)
	want := summaryIntro +
		"## Vocabulary (2)\n" +
		"1. You said: \"a1\" → Correct: \"b1\"\n" +
		"2. You said: \"a3\" → Correct: \"b3\"\n\n" +
		"## Grammar (2)\n" +
		"1. You said: \"a2\" → Correct: \"b2\"\n" +
		"2. You said: \"a5\" → Correct: \"b5\"\n\n" +
		"## Other (1)\n" +
		"1. You said: \"a4\" → Correct: \"b4\"\n\n"
	if got != want {
		t.Fatalf("report mismatch\n got: %q\nwant: %q", got, want)
	}

	if n := strings.Count(got, "## "); n != 3 {
		t.Errorf("got %d headings, want 3", n)
	}
	if n := strings.Count(got, "You said: "); n != len(mistakes) {
		t.Errorf("got %d lines, want %d", n, len(mistakes))
	}
}

func TestSummarize(t *testing.T) {
	p := Profile{NativeLanguage: "English", LearningLanguage: "German", Level: LevelAdvanced, Scenario: "Job interview practice"}

	t.Run("empty makes no call", func(t *testing.T) {
		mock := llm.NewMockProvider()
		got, err := NewSummarizer(mock, DefaultConfig()).Summarize(context.Background(), p, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != NoMistakesMessage {
			t.Fatalf("got %q", got)
		}
		if mock.CallCount() != 0 {
			t.Fatalf("expected no model call, got %d", mock.CallCount())
		}
	})

	t.Run("appends suggestions verbatim", func(t *testing.T) {
		mock := llm.NewMockProvider()
		mock.AddText("1. Review dative case.\n2. Read short articles daily.")
		mistakes := []Mistake{{Original: "mit der Auto", Corrected: "mit dem Auto", Type: Grammar}}

		got, err := NewSummarizer(mock, DefaultConfig()).Summarize(context.Background(), p, mistakes)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := RenderReport(mistakes) + "## Improvement Suggestions\n\n1. Review dative case.\n2. Read short articles daily."
		if got != want {
			t.Fatalf("got %q\nwant %q", got, want)
		}
		if !strings.Contains(mock.Calls[0].Messages[0].Content, "## Grammar (1)") {
			t.Fatal("summary prompt should include the rendered report")
		}
	})

	t.Run("model failure is fatal", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
		_, err := NewSummarizer(mock, DefaultConfig()).Summarize(context.Background(), p, []Mistake{{Type: Other}})
		if _, ok := err.(*ModelCallError); !ok {
			t.Fatalf("expected *ModelCallError, got %T", err)
		}
	})
}

func TestConversation_TurnBeforeConfigure(t *testing.T) {
	c := NewConversation(llm.NewMockProvider(), DefaultConfig())
	_, err := c.Turn(context.Background(), "hola")
	if _, ok := err.(*ConfigurationError); !ok {
		t.Fatalf("expected *ConfigurationError, got %T (%v)", err, err)
	}
}

func TestConversation_ConfigureResetsHistory(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText("uno")
	c := NewConversation(mock, DefaultConfig())
	p := Profile{NativeLanguage: "English", LearningLanguage: "Italian", Level: "Intermediate", Scenario: "Shopping for clothes at a store"}
	if err := c.Configure(p); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if c.Profile().Level != LevelIntermediate {
		t.Fatalf("level not normalised: %q", c.Profile().Level)
	}
	if _, err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(c.History()) != 2 {
		t.Fatalf("history = %d, want 2", len(c.History()))
	}
	if err := c.Configure(p); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if len(c.History()) != 0 {
		t.Fatal("configure should clear history")
	}
}

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/parlo/internal/store"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect past practice sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		user, _ := cmd.Flags().GetString("user")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.SessionRepo()
		sessions, err := repo.ListSessions(ctx, store.QueryOpts{Limit: limit, UserID: user})
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		tw := newTable(cmd.OutOrStdout(), "ID", "STARTED", "NATIVE", "LEARNING", "LEVEL", "DURATION", "MISTAKES")
		for _, rec := range sessions {
			counts, err := repo.CountMistakes(ctx, rec.ID)
			if err != nil {
				return fmt.Errorf("count mistakes: %w", err)
			}
			tw.row(rec.ID, rec.StartTime.Local().Format("2006-01-02 15:04"), rec.NativeLanguage,
				rec.LearningLanguage, rec.ProficiencyLevel, duration(rec), totalMistakes(counts))
		}
		return tw.Flush()
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session and its mistakes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.SessionRepo()
		rec, err := repo.GetSession(ctx, id)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if rec == nil {
			return fmt.Errorf("session %d not found", id)
		}

		fmt.Printf("ID:        %d\n", rec.ID)
		fmt.Printf("User:      %s\n", rec.UserID)
		fmt.Printf("Languages: %s → %s\n", rec.NativeLanguage, rec.LearningLanguage)
		fmt.Printf("Level:     %s\n", rec.ProficiencyLevel)
		fmt.Printf("Started:   %s\n", rec.StartTime.Local().Format("2006-01-02 15:04:05"))
		if rec.Ended() {
			fmt.Printf("Ended:     %s (%s)\n", rec.EndTime.Local().Format("2006-01-02 15:04:05"), duration(*rec))
		} else {
			fmt.Println("Ended:     (in progress)")
		}

		counts, err := repo.CountMistakes(ctx, id)
		if err != nil {
			return fmt.Errorf("count mistakes: %w", err)
		}
		mistakes, err := repo.GetSessionMistakes(ctx, id)
		if err != nil {
			return fmt.Errorf("get mistakes: %w", err)
		}

		sep := strings.Repeat("─", 60)
		fmt.Println()
		fmt.Println(sep)
		fmt.Printf("MISTAKES (%d)\n", len(mistakes))
		fmt.Println(sep)
		if len(mistakes) == 0 {
			fmt.Println("No mistakes recorded.")
			return nil
		}
		for _, c := range counts {
			fmt.Printf("%-14s %d\n", c.MistakeType, c.Count)
		}
		fmt.Println(sep)
		for i, m := range mistakes {
			fmt.Printf("%3d. [%s] %q → %q\n", i+1, m.MistakeType, m.MistakeText, m.Correction)
		}
		return nil
	},
}

func totalMistakes(counts []store.TypeCount) int {
	n := 0
	for _, c := range counts {
		n += c.Count
	}
	return n
}

func duration(rec store.SessionRecord) string {
	if !rec.Ended() {
		return "-"
	}
	return rec.EndTime.Sub(rec.StartTime).Round(time.Second).String()
}

func init() {
	sessionsListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	sessionsListCmd.Flags().StringP("user", "u", "", "Only show sessions for this user id")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
}

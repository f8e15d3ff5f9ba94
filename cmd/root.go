package cmd

import (
	"os"
	"strconv"

	"github.com/abhisek/parlo/internal/scenario"
	"github.com/abhisek/parlo/internal/store"
	"github.com/abhisek/parlo/internal/tutor"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parlo",
	Short: "AI language conversation tutor",
	Long:  "Parlo is a terminal tutor that holds role-play conversations in the language you are learning and corrects your mistakes as you go.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env file is fine; the environment still applies.
		_ = godotenv.Load()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PARLO_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file (the TUI discards logs otherwise)")
	rootCmd.PersistentFlags().String("scenarios", "", "YAML file extending the scenario catalogue (overrides PARLO_SCENARIOS env var)")
	rootCmd.PersistentFlags().Bool("structured", false, "Ask the model for JSON replies instead of the correction marker (overrides PARLO_STRUCTURED_REPLIES)")
	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PARLO_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// loadCatalog reads the scenario catalogue from --scenarios, then
// PARLO_SCENARIOS, and falls back to the built-in scenes.
func loadCatalog(cmd *cobra.Command) (*scenario.Catalog, error) {
	path, _ := cmd.Flags().GetString("scenarios")
	if path == "" {
		path = os.Getenv("PARLO_SCENARIOS")
	}
	return scenario.Load(path)
}

// tutorConfig applies the --structured flag or PARLO_STRUCTURED_REPLIES to
// the default tutor settings.
func tutorConfig(cmd *cobra.Command) tutor.Config {
	cfg := tutor.DefaultConfig()
	if cmd.Flags().Changed("structured") {
		cfg.Structured, _ = cmd.Flags().GetBool("structured")
		return cfg
	}
	if v, err := strconv.ParseBool(os.Getenv("PARLO_STRUCTURED_REPLIES")); err == nil {
		cfg.Structured = v
	}
	return cfg
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/parlo/internal/app"
	"github.com/abhisek/parlo/internal/llm"
	"github.com/abhisek/parlo/internal/logging"
	"github.com/abhisek/parlo/internal/store"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	level, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")
	// The TUI owns the terminal, so logs only go to a file.
	logger, closeLog, err := logging.New(logging.Options{Level: level, File: logFile})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer closeLog()

	catalog, err := loadCatalog(cmd)
	if err != nil {
		return fmt.Errorf("load scenarios: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	provider, cfg, err := llm.NewProviderFromEnv(ctx, st.EventRepo(), logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Set PARLO_LLM_PROVIDER and an API key, or export OPENAI_API_KEY.")
		return err
	}
	logger.Info("starting tutor", "provider", cfg.Provider, "model", provider.ModelID(), "db", dbPath)

	skipSplash, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(app.Options{
		Provider:   provider,
		Sessions:   st.SessionRepo(),
		Catalog:    catalog,
		Tutor:      tutorConfig(cmd),
		Logger:     logger,
		SkipSplash: skipSplash,
	})
}

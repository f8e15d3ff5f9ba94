package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the conversation scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cmd)
		if err != nil {
			return fmt.Errorf("load scenarios: %w", err)
		}

		tw := newTable(cmd.OutOrStdout(), "ID", "TITLE", "DESCRIPTION")
		for _, s := range catalog.All() {
			tw.row(s.ID, s.Title, s.Description)
		}
		return tw.Flush()
	},
}

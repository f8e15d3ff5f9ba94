package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X github.com/abhisek/parlo/cmd.version=..."
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the parlo version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("parlo", version)
	},
}

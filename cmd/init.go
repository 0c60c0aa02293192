package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mohsalah/askdoc/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize askdoc configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure askdoc and generates a .askdoc.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

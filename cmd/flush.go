package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flushUser string

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Remove all stored data for a user",
	Long:  `Deletes the user's encrypted upload, chunk set, vector index and registry entry. Flushing a user with no data is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		orchestrator, registry, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}
		defer registry.Close()

		msg, err := orchestrator.Flush(cmd.Context(), flushUser)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

func init() {
	flushCmd.Flags().StringVarP(&flushUser, "user", "u", "", "user id to flush (required)")
	_ = flushCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(flushCmd)
}

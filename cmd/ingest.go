package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mohsalah/askdoc/internal/progress"
)

var (
	ingestUser    string
	ingestNoIndex bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Upload a document for a user and build its index",
	Long:  `Encrypts and stores a document for the given user, extracts and chunks its text, and builds the vector index so questions can be asked immediately.`,
	Args:  cobra.ExactArgs(1),
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

		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		steps := 2
		if ingestNoIndex {
			steps = 1
		}
		reporter := progress.NewReporter()
		reporter.Start(steps)

		ctx := cmd.Context()
		reporter.Update(0, "Uploading and extracting text")
		msg, err := orchestrator.SubmitDocument(ctx, ingestUser, filepath.Base(path), data)
		if err != nil {
			reporter.Finish()
			return err
		}
		reporter.Update(1, msg)

		if !ingestNoIndex {
			reporter.Update(1, "Building vector index")
			if msg, err = orchestrator.BuildIndex(ctx, ingestUser); err != nil {
				reporter.Finish()
				return err
			}
			reporter.Update(2, msg)
		}
		reporter.Finish()

		fmt.Printf("Ingested %s for user %s\n", filepath.Base(path), ingestUser)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestUser, "user", "u", "", "user id owning the document (required)")
	ingestCmd.Flags().BoolVar(&ingestNoIndex, "no-index", false, "upload only, skip building the index")
	_ = ingestCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(ingestCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askUser    string
	askSuggest int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about a user's indexed document",
	Long:  `Retrieves the most relevant chunks from the user's vector index and answers the question with the configured LLM. With --suggest, prints suggested questions instead of answering.`,
	Args:  cobra.MinimumNArgs(0),
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

		ctx := cmd.Context()
		if askSuggest > 0 {
			questions, err := orchestrator.GenerateQuestions(ctx, askUser, strings.Join(args, " "), askSuggest)
			if err != nil {
				return err
			}
			for _, q := range questions {
				fmt.Println(q)
			}
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("a question is required unless --suggest is set")
		}
		answer, err := orchestrator.Ask(ctx, askUser, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&askUser, "user", "u", "", "user id owning the document (required)")
	askCmd.Flags().IntVar(&askSuggest, "suggest", 0, "print up to N suggested questions instead of answering")
	_ = askCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(askCmd)
}

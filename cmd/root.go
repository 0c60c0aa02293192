package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "askdoc",
	Short: "Encrypted document question answering over HTTP and CLI",
	Long: `Askdoc ingests a document per user, stores it encrypted at rest,
extracts and chunks its text, builds a semantic vector index and
answers questions about the document using an LLM.`,
}

func Execute() error {
	// API keys are commonly kept in a local .env file.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".askdoc.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

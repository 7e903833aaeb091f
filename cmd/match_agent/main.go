// Package main provides the entry point for the job match agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "match_agent",
	Short: "Resume-to-job matching agent",
	Long:  "match_agent ranks job postings against a resume: deduplication, preference pre-filtering, vector retrieval with LLM reranking, a cheap relevance gate, full LLM-as-judge scoring, and deterministic ATS keyword scoring blended into one ranking.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

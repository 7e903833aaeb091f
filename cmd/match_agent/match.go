package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-match-agent/internal/config"
	"github.com/jonathan/job-match-agent/internal/llm"
	"github.com/jonathan/job-match-agent/internal/logger"
	"github.com/jonathan/job-match-agent/internal/observability"
	"github.com/jonathan/job-match-agent/internal/pipeline"
	"github.com/jonathan/job-match-agent/internal/rerank"
	"github.com/jonathan/job-match-agent/internal/scoring"
	"github.com/jonathan/job-match-agent/internal/types"
	"github.com/jonathan/job-match-agent/internal/vectorstore"
)

// embeddingDims is the dimensionality of text-embedding-004 vectors.
const embeddingDims = 768

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank job postings against a resume",
	Long:  "Runs the full matching funnel over a postings file and prints the ranked matches. Without --db-url an in-memory vector store is used, so the index only lives for the run.",
	RunE:  runMatch,
}

var (
	matchResumePath   string
	matchPostingsPath string
	matchConfigPath   string
	matchTargetTitle  string
	matchAPIKey       string
	matchDatabaseURL  string
	matchMultiQuery   bool
	matchNoDedup      bool
	matchNoPreFilter  bool
	matchGateWorkers  int
	matchJudgeWorkers int
	matchVerbose      bool
	matchJSONLogs     bool
)

func init() {
	matchCmd.Flags().StringVarP(&matchResumePath, "resume", "r", "", "Path to resume text file (required)")
	matchCmd.Flags().StringVarP(&matchPostingsPath, "postings", "p", "", "Path to job postings JSON file")
	matchCmd.Flags().StringVarP(&matchConfigPath, "config", "c", "", "Path to preferences JSON file")
	matchCmd.Flags().StringVar(&matchTargetTitle, "title", "", "Target job title for retrieval and seniority filtering")
	matchCmd.Flags().StringVar(&matchAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	matchCmd.Flags().StringVar(&matchDatabaseURL, "db-url", "", "PostgreSQL URL for the pgvector store (defaults to DATABASE_URL)")
	matchCmd.Flags().BoolVar(&matchMultiQuery, "multi-query", false, "Expand retrieval with alternative query phrasings")
	matchCmd.Flags().BoolVar(&matchNoDedup, "no-dedup", false, "Skip cross-source deduplication")
	matchCmd.Flags().BoolVar(&matchNoPreFilter, "no-prefilter", false, "Skip preference pre-filtering")
	matchCmd.Flags().IntVar(&matchGateWorkers, "gate-workers", 0, "Concurrent relevance gate calls (default 5)")
	matchCmd.Flags().IntVar(&matchJudgeWorkers, "judge-workers", 0, "Concurrent judge calls (default 1)")
	matchCmd.Flags().BoolVarP(&matchVerbose, "verbose", "v", false, "Print per-match evaluation details")
	matchCmd.Flags().BoolVar(&matchJSONLogs, "json-logs", false, "Emit logs as JSON")

	if err := matchCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	log, err := logger.New(matchJSONLogs, matchVerbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	resumeBytes, err := os.ReadFile(matchResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	resumeText := string(resumeBytes)
	if resumeText == "" {
		return fmt.Errorf("resume file %s is empty", matchResumePath)
	}

	var postings []types.Posting
	if matchPostingsPath != "" {
		postings, err = loadPostings(matchPostingsPath)
		if err != nil {
			return err
		}
	}

	prefs := config.DefaultPreferences()
	if matchConfigPath != "" {
		prefs, err = config.LoadPreferences(matchConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
	}
	// Flags override the preferences file.
	if cmd.Flags().Changed("multi-query") {
		prefs.MultiQuery = matchMultiQuery
	}

	apiKey := matchAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY not set (set the environment variable or use --api-key)")
	}

	ctx := context.Background()
	llmConfig := llm.DefaultGeminiConfig()

	client, err := llm.NewClient(ctx, llmConfig, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	embedder, err := llm.NewGeminiEmbedder(ctx, llmConfig, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	gate := scoring.NewRelevanceGate(client, log)
	if matchGateWorkers > 0 {
		gate.SetWorkers(matchGateWorkers)
	}
	judge := scoring.NewJudgeScorer(client, prefs.Weights, log)
	if matchJudgeWorkers > 0 {
		judge.SetWorkers(matchJudgeWorkers)
	}

	matcher := pipeline.NewMatcher(embedder, store, client, rerank.NewLLMReranker(client, log), gate, judge, log)

	result, err := matcher.Match(ctx, pipeline.MatchRequest{
		ResumeText:  resumeText,
		Postings:    postings,
		Preferences: prefs,
		TargetTitle: matchTargetTitle,
		Deduplicate: !matchNoDedup,
		PreFilter:   !matchNoPreFilter,
		MultiQuery:  prefs.MultiQuery,
	})
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintFunnelStats(result.Stats)
	printer.PrintRankedMatches(result.Matches)
	if matchVerbose {
		for i := range result.Matches {
			printer.PrintMatchDetail(i+1, &result.Matches[i])
		}
	}
	return nil
}

// openStore picks the pgvector-backed store when a database URL is
// available, otherwise the in-memory store.
func openStore(ctx context.Context) (vectorstore.Store, func(), error) {
	databaseURL := matchDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return vectorstore.NewMemoryStore(), func() {}, nil
	}

	store, err := vectorstore.NewPostgresStore(ctx, databaseURL, embeddingDims)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	return store, store.Close, nil
}

func loadPostings(path string) ([]types.Posting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read postings file: %w", err)
	}

	var postings []types.Posting
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, fmt.Errorf("failed to parse postings file %s: %w", path, err)
	}
	return postings, nil
}

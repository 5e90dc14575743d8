package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/veraengine/vira/internal/pipeline"
	"github.com/veraengine/vira/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple assets from a file in parallel",
	Long: `Batch processes multiple asset token IDs concurrently:
- Read token IDs from the input file (one per line)
- Run independent analysis pipelines with a configurable worker count
- Write one final report per asset

Example:
  vira batch tokens.txt
  vira batch tokens.txt --concurrency 8 --output-dir ./reports
  vira batch tokens.txt --engine ollama --engine-model llama3.1:8b`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./vira-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 15*time.Minute, "total timeout for batch processing")

	// Shared with analyze
	batchCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "primary store address")
	batchCmd.Flags().StringVar(&dataDir, "data-dir", "", "fallback dataset directory")
	batchCmd.Flags().StringVar(&engineName, "engine", "openai", "analysis engine provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&engineModel, "engine-model", "", "analysis engine model name")
	batchCmd.Flags().DurationVar(&engineTimeout, "engine-timeout", 60*time.Second, "upper bound on one engine call")
	batchCmd.Flags().BoolVar(&noPretty, "no-pretty", false, "emit compact JSON")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	analyzer, err := pipeline.NewAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Batch analysis: %s (%d workers, engine %s)\n", file, cfg.Concurrency.Workers, cfg.Engine.Provider)

	processor := worker.NewBatchProcessor(analyzer, cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.Pretty)
	counts := make(map[string]int)

	for _, result := range results {
		counts[string(result.Report.Status)]++

		jsonPath := filepath.Join(outputDir, sanitizeFilename(result.TokenID)+".json")
		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "write report for %s: %v\n", result.TokenID, err)
			continue
		}
		renderer.RenderSummary(result.Report, os.Stderr)
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d assets", len(results))
	for _, status := range []string{"Success", "Not Found", "Partial Success", "Failed"} {
		if counts[status] > 0 {
			fmt.Fprintf(os.Stderr, ", %d %s", counts[status], status)
		}
	}
	fmt.Fprintf(os.Stderr, " -> %s\n", outputDir)

	return nil
}

// sanitizeFilename makes a token ID safe to use as a file name.
func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	if len(out) > 100 {
		out = out[:100]
	}
	return string(out)
}

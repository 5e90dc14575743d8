package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/veraengine/vira/internal/model"
)

// Analyzer runs the full risk analysis for one asset. It never fails: every
// failure mode is folded into the final report.
type Analyzer interface {
	Analyze(ctx context.Context, tokenID string) *model.FinalReport
}

// AnalyzeJob is one asset analysis.
type AnalyzeJob struct {
	TokenID  string
	Analyzer Analyzer
}

// Execute implements Job.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	return &AnalyzeResult{
		TokenID: j.TokenID,
		Report:  j.Analyzer.Analyze(ctx, j.TokenID),
	}
}

// AnalyzeResult is the result of one asset analysis.
type AnalyzeResult struct {
	TokenID string
	Report  *model.FinalReport
}

// GetError implements Result. Analysis failures live inside the report's
// status, not here.
func (r *AnalyzeResult) GetError() error {
	return nil
}

// BatchProcessor analyzes multiple assets concurrently. Each analysis is an
// independent end-to-end pipeline run; no state is shared between them.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessTokens analyzes the given token IDs concurrently.
func (b *BatchProcessor) ProcessTokens(ctx context.Context, tokenIDs []string) []*AnalyzeResult {
	if len(tokenIDs) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, tokenID := range tokenIDs {
		pool.Submit(&AnalyzeJob{
			TokenID:  tokenID,
			Analyzer: b.analyzer,
		})
	}

	results := pool.Wait()

	analyzeResults := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		analyzeResults[i] = result.(*AnalyzeResult)
	}

	return analyzeResults
}

// ProcessFile reads token IDs from a file and analyzes them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	tokenIDs, err := ReadTokensFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read tokens: %w", err)
	}

	return b.ProcessTokens(ctx, tokenIDs), nil
}

// ReadTokensFromFile reads token IDs from a file, one per line. Blank lines
// and # comments are skipped; duplicates are dropped.
func ReadTokensFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var tokenIDs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			tokenIDs = append(tokenIDs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return tokenIDs, nil
}

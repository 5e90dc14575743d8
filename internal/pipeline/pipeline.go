// Package pipeline orchestrates one risk analysis end to end: record store
// lookup, evidence compilation, the analysis engine call, normalization,
// and outcome classification.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veraengine/vira/internal/compile"
	"github.com/veraengine/vira/internal/llm"
	"github.com/veraengine/vira/internal/model"
	"github.com/veraengine/vira/internal/normalize"
	"github.com/veraengine/vira/internal/store"
	"github.com/veraengine/vira/internal/worker"
)

// Analyzer runs the full risk analysis pipeline for single assets. It is
// safe for concurrent use; concurrent analyses share nothing but the store
// connection pool and the engine rate limiter.
type Analyzer struct {
	compiler      *compile.Compiler
	provider      llm.Provider
	limiter       *worker.Limiter
	engineTimeout time.Duration
	log           *zap.Logger
}

// NewAnalyzer wires the full pipeline from configuration.
func NewAnalyzer(cfg *model.Config, log *zap.Logger) (*Analyzer, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.Engine))
	if err != nil {
		return nil, fmt.Errorf("create analysis engine provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("analysis engine provider not configured")
	}

	primary := store.NewPrimaryStore(cfg.Primary, log)
	fallback := store.NewFallbackStore(cfg.Fallback, log)
	adapter := store.NewAdapter(primary, fallback, log)

	return &Analyzer{
		compiler:      compile.NewCompiler(adapter, log),
		provider:      provider,
		limiter:       worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		engineTimeout: cfg.Engine.Timeout,
		log:           log,
	}, nil
}

// Analyze runs the pipeline for one asset. It never returns an error:
// every failure mode, including a panic anywhere below, is folded into a
// well-formed final report.
func (a *Analyzer) Analyze(ctx context.Context, tokenID string) (report *model.FinalReport) {
	log := a.log.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("token_id", tokenID),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("analysis panicked", zap.Any("panic", r))
			report = &model.FinalReport{
				TokenID:        tokenID,
				Status:         model.StatusFailed,
				RiskAssessment: &model.RiskReport{PotentialRiskType: labelAnalysisError},
				Details:        fmt.Sprintf("Critical error during analysis: %v", r),
			}
		}
	}()

	o := outcome{tokenID: tokenID}

	bundle, err := a.compiler.Compile(ctx, tokenID)
	if err != nil {
		o.compileErr = err
		log.Warn("evidence compilation failed", zap.Error(err))
		return classify(o)
	}

	raw, err := a.invokeEngine(ctx, *bundle)
	if err != nil {
		o.engineErr = err
		log.Warn("analysis engine call failed", zap.Error(err))
		return classify(o)
	}
	log.Info("analysis engine replied",
		zap.String("model", raw.Model),
		zap.Int("tokens_used", raw.TokensUsed))

	rep, err := normalize.Normalize(raw.Text)
	if err != nil {
		o.normErr = err
		log.Warn("engine reply rejected by normalizer", zap.Error(err))
	} else {
		o.report = rep
	}

	final := classify(o)
	log.Info("analysis complete",
		zap.String("status", string(final.Status)),
		zap.String("risk", final.RiskAssessment.PotentialRiskType))
	return final
}

// invokeEngine makes the single, bounded call to the analysis engine. The
// timeout makes expiry a terminal failure rather than a hang; there is no
// retry, so repeated identical requests always redo the full call.
func (a *Analyzer) invokeEngine(ctx context.Context, bundle model.EvidenceBundle) (*llm.AnalyzeResponse, error) {
	if err := a.limiter.Wait(ctx, a.provider.Name()); err != nil {
		return nil, fmt.Errorf("engine rate limit: %w", err)
	}

	if a.engineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.engineTimeout)
		defer cancel()
	}

	resp, err := a.provider.Analyze(ctx, llm.AnalyzeRequest{Bundle: bundle})
	if err != nil {
		return nil, fmt.Errorf("analysis engine: %w", err)
	}
	return resp, nil
}

package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/veraengine/vira/internal/compile"
	"github.com/veraengine/vira/internal/llm"
	"github.com/veraengine/vira/internal/model"
	"github.com/veraengine/vira/internal/store"
	"github.com/veraengine/vira/internal/worker"
)

// fakeProvider is a scriptable analysis engine.
type fakeProvider struct {
	reply     string
	err       error
	panicWith any
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Analyze(ctx context.Context, req llm.AnalyzeRequest) (*llm.AnalyzeResponse, error) {
	if p.panicWith != nil {
		panic(p.panicWith)
	}
	if p.err != nil {
		return nil, p.err
	}
	return &llm.AnalyzeResponse{Text: p.reply, Model: "fake-1", TokensUsed: 42}, nil
}

func (p *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

// memStore serves a fixed in-memory dataset.
type memStore struct {
	metadata map[string]*model.Metadata
	registry map[string]*model.RegistryRecord
	alerts   []model.Alert
	deeds    map[string]string
}

func (s *memStore) Metadata(ctx context.Context, tokenID string) (*model.Metadata, error) {
	if md, ok := s.metadata[tokenID]; ok {
		return md, nil
	}
	return nil, store.ErrNotFound
}

func (s *memStore) Registry(ctx context.Context, key string) (*model.RegistryRecord, error) {
	if rec, ok := s.registry[key]; ok {
		return rec, nil
	}
	return nil, store.ErrNotFound
}

func (s *memStore) Alerts(ctx context.Context) ([]model.Alert, error) {
	return s.alerts, nil
}

func (s *memStore) Deed(ctx context.Context, tokenID string) (string, error) {
	if deed, ok := s.deeds[tokenID]; ok {
		return deed, nil
	}
	return "", store.ErrNotFound
}

func newTestAnalyzer(provider llm.Provider) *Analyzer {
	data := &memStore{
		metadata: map[string]*model.Metadata{
			"NGA-LAG-001": {TokenID: "NGA-LAG-001", Attributes: []model.Attribute{
				{TraitType: model.RegistrySearchKeyTrait, Value: "LAG/2021/0042"},
			}},
			"NGA-LAG-002": {TokenID: "NGA-LAG-002"},
		},
		registry: map[string]*model.RegistryRecord{
			"LAG/2021/0042": {CofOID: "LAG/2021/0042", OwnerName: "Adeyemi Balogun"},
		},
		deeds: map[string]string{"NGA-LAG-001": "THIS DEED..."},
	}

	adapter := store.NewAdapter(data, data, zap.NewNop())
	return &Analyzer{
		compiler: compile.NewCompiler(adapter, zap.NewNop()),
		provider: provider,
		limiter:  worker.NewLimiter(0, 1),
		log:      zap.NewNop(),
	}
}

func TestAnalyzer_Success(t *testing.T) {
	provider := &fakeProvider{reply: "```json\n" + `{
		"risk_score": 78,
		"risk_category": "Title Dispute",
		"summary": "Ownership is contested.",
		"data_source": "primary store",
		"property_id": "NGA-LAG-001"
	}` + "\n```"}

	report := newTestAnalyzer(provider).Analyze(context.Background(), "NGA-LAG-001")

	if report.Status != model.StatusSuccess {
		t.Fatalf("Status = %q, want Success (details: %s)", report.Status, report.Details)
	}
	if report.RiskScore == nil || *report.RiskScore != 78 {
		t.Errorf("RiskScore = %v, want 78", report.RiskScore)
	}
	if report.AISummary != "Ownership is contested." {
		t.Errorf("AISummary = %q", report.AISummary)
	}
	if report.RiskAssessment.PotentialRiskType != model.RiskTitleDispute {
		t.Errorf("risk = %q", report.RiskAssessment.PotentialRiskType)
	}
}

func TestAnalyzer_AssetNotFound(t *testing.T) {
	report := newTestAnalyzer(&fakeProvider{}).Analyze(context.Background(), "NGA-MISSING")

	if report.Status != model.StatusNotFound {
		t.Fatalf("Status = %q, want Not Found", report.Status)
	}
	if report.Details != "Asset not found" {
		t.Errorf("Details = %q", report.Details)
	}
}

func TestAnalyzer_RegistryKeyMissing(t *testing.T) {
	report := newTestAnalyzer(&fakeProvider{}).Analyze(context.Background(), "NGA-LAG-002")

	if report.Status != model.StatusFailed {
		t.Fatalf("Status = %q, want Failed", report.Status)
	}
	if !strings.Contains(report.Details, model.RegistrySearchKeyTrait) {
		t.Errorf("Details = %q, should name the missing attribute", report.Details)
	}
}

func TestAnalyzer_EngineFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}

	report := newTestAnalyzer(provider).Analyze(context.Background(), "NGA-LAG-001")

	if report.Status != model.StatusFailed {
		t.Fatalf("Status = %q, want Failed", report.Status)
	}
	if !strings.Contains(report.Details, "connection refused") {
		t.Errorf("Details = %q", report.Details)
	}
}

func TestAnalyzer_EmptyEngineReply(t *testing.T) {
	provider := &fakeProvider{reply: `{"summary": "nothing to say"}`}

	report := newTestAnalyzer(provider).Analyze(context.Background(), "NGA-LAG-001")

	if report.Status != model.StatusPartialSuccess {
		t.Fatalf("Status = %q, want Partial Success", report.Status)
	}
	if report.RiskAssessment.PotentialRiskType != labelUnknownRisk {
		t.Errorf("risk = %q", report.RiskAssessment.PotentialRiskType)
	}
}

func TestAnalyzer_GarbageEngineReply(t *testing.T) {
	provider := &fakeProvider{reply: "I cannot assess this property."}

	report := newTestAnalyzer(provider).Analyze(context.Background(), "NGA-LAG-001")

	if report.Status != model.StatusFailed {
		t.Fatalf("Status = %q, want Failed", report.Status)
	}
}

func TestAnalyzer_OutOfBandScore(t *testing.T) {
	provider := &fakeProvider{reply: `{"risk_category": "Title Dispute", "risk_score": 12}`}

	report := newTestAnalyzer(provider).Analyze(context.Background(), "NGA-LAG-001")

	if report.Status != model.StatusFailed {
		t.Fatalf("Status = %q, want Failed for an out-of-band score", report.Status)
	}
	if report.RiskScore != nil {
		t.Error("a rejected score must never surface in the final report")
	}
}

func TestAnalyzer_RecoversFromPanic(t *testing.T) {
	provider := &fakeProvider{panicWith: "engine exploded"}

	report := newTestAnalyzer(provider).Analyze(context.Background(), "NGA-LAG-001")

	if report == nil {
		t.Fatal("Analyze returned nil after panic")
	}
	if report.Status != model.StatusFailed {
		t.Fatalf("Status = %q, want Failed", report.Status)
	}
	if !strings.Contains(report.Details, "Critical error during analysis") {
		t.Errorf("Details = %q", report.Details)
	}
	if report.TokenID != "NGA-LAG-001" {
		t.Errorf("TokenID = %q", report.TokenID)
	}
}

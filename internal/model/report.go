package model

// Risk categories the analysis engine may assign.
const (
	RiskTitleDispute         = "Title Dispute"
	RiskFinancialPledge      = "Financial Pledge"
	RiskGovernmentRevocation = "Government Revocation"
	RiskNoneFound            = "No Risk Found"
)

// ScoreRange is the inclusive score band for one risk category.
type ScoreRange struct {
	Min int
	Max int
}

// Contains reports whether score falls inside the band.
func (r ScoreRange) Contains(score int) bool {
	return score >= r.Min && score <= r.Max
}

// ScoreRubric maps each risk category to the band the engine is instructed
// to score within. The normalizer treats out-of-band scores as anomalies.
var ScoreRubric = map[string]ScoreRange{
	RiskNoneFound:            {Min: 15, Max: 25},
	RiskFinancialPledge:      {Min: 45, Max: 65},
	RiskTitleDispute:         {Min: 70, Max: 85},
	RiskGovernmentRevocation: {Min: 80, Max: 95},
}

// EvidenceItem summarizes the engine's finding for one data source.
type EvidenceItem struct {
	Source string `json:"source"`
	Result string `json:"result"`
	Detail string `json:"detail"`
}

// RiskReport is the canonical engine verdict after normalization.
//
// PotentialRiskType is a deprecated alias of RiskCategory kept for older
// consumers; whenever RiskCategory is present the two are equal.
type RiskReport struct {
	RiskScore         *int           `json:"risk_score,omitempty"`
	RiskCategory      string         `json:"risk_category,omitempty"`
	PotentialRiskType string         `json:"potential_risk_type,omitempty"`
	Summary           string         `json:"summary,omitempty"`
	EvidenceSummary   []EvidenceItem `json:"evidence_summary,omitempty"`
	DataSource        string         `json:"data_source,omitempty"`
	PropertyID        string         `json:"property_id,omitempty"`
}

// Status is the terminal state of one analysis. These four values are the
// only states ever returned to a caller.
type Status string

const (
	StatusSuccess        Status = "Success"
	StatusNotFound       Status = "Not Found"
	StatusPartialSuccess Status = "Partial Success"
	StatusFailed         Status = "Failed"
)

// FinalReport is the uniformly shaped result of one analysis, produced on
// every path including catastrophic failure.
type FinalReport struct {
	TokenID        string      `json:"token_id"`
	Status         Status      `json:"status"`
	RiskAssessment *RiskReport `json:"risk_assessment"`
	Details        string      `json:"details"`
	RiskScore      *int        `json:"risk_score,omitempty"`
	AISummary      string      `json:"ai_summary,omitempty"`
}

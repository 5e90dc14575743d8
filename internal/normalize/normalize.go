// Package normalize turns raw analysis engine replies into canonical risk
// reports. The engine's output is treated as untrusted text: it may be
// wrapped in markdown fences, malformed, off-schema, or scored outside the
// rubric it was instructed to honor.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/veraengine/vira/internal/model"
)

// Reason discriminates normalization failures.
//
// MissingRiskFields and ScoreOutOfRange are both schema mismatches, but the
// classifier treats them differently: a structurally valid reply missing
// both risk fields is a partial success, while an out-of-range score is a
// failure.
type Reason string

const (
	ReasonNotJSON           Reason = "not_json"
	ReasonMissingRiskFields Reason = "missing_risk_fields"
	ReasonScoreOutOfRange   Reason = "score_out_of_range"
)

// Error is a typed normalization failure.
type Error struct {
	Reason Reason
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

// AsError extracts a normalization error from an error chain.
func AsError(err error) (*Error, bool) {
	var ne *Error
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// Normalize parses a raw engine reply into a canonical risk report.
//
// At least one of risk_category or the deprecated potential_risk_type must
// be present for the reply to be accepted. When risk_category is present,
// potential_risk_type is overwritten with the same value for backward
// compatibility; the alias never propagates in the other direction.
func Normalize(raw string) (*model.RiskReport, error) {
	text := StripFences(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, &Error{
			Reason: ReasonNotJSON,
			Msg:    fmt.Sprintf("engine reply is not valid JSON: %v", err),
		}
	}

	report := &model.RiskReport{
		RiskCategory:      stringField(fields, "risk_category"),
		PotentialRiskType: stringField(fields, "potential_risk_type"),
		Summary:           stringField(fields, "summary"),
		DataSource:        stringField(fields, "data_source"),
		PropertyID:        stringField(fields, "property_id"),
		EvidenceSummary:   evidenceItems(fields["evidence_summary"]),
	}
	if score, ok := intField(fields, "risk_score"); ok {
		report.RiskScore = &score
	}

	if report.RiskCategory == "" && report.PotentialRiskType == "" {
		return nil, &Error{
			Reason: ReasonMissingRiskFields,
			Msg:    "engine reply carries neither risk_category nor potential_risk_type",
		}
	}

	if report.RiskCategory != "" {
		report.PotentialRiskType = report.RiskCategory
	}

	if err := checkScoreRange(report); err != nil {
		return nil, err
	}

	return report, nil
}

// checkScoreRange rejects a score outside the rubric band declared for its
// category. Scores are never clamped: a rubric violation means the engine
// ignored its instructions and the whole verdict is suspect. An absent
// score or an unknown category string passes through unvalidated.
func checkScoreRange(r *model.RiskReport) error {
	if r.RiskScore == nil {
		return nil
	}
	band, ok := model.ScoreRubric[r.RiskCategory]
	if !ok {
		return nil
	}
	if !band.Contains(*r.RiskScore) {
		return &Error{
			Reason: ReasonScoreOutOfRange,
			Msg: fmt.Sprintf("risk_score %d outside the %d-%d band declared for %q",
				*r.RiskScore, band.Min, band.Max, r.RiskCategory),
		}
	}
	return nil
}

// StripFences removes markdown code-fence markers, optionally annotated
// "json", from anywhere in the reply.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func intField(fields map[string]any, name string) (int, bool) {
	// JSON numbers decode as float64
	if v, ok := fields[name].(float64); ok {
		return int(math.Round(v)), true
	}
	return 0, false
}

func evidenceItems(v any) []model.EvidenceItem {
	entries, ok := v.([]any)
	if !ok {
		return nil
	}

	var items []model.EvidenceItem
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, model.EvidenceItem{
			Source: stringField(m, "source"),
			Result: stringField(m, "result"),
			Detail: stringField(m, "detail"),
		})
	}
	return items
}

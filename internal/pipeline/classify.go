package pipeline

import (
	"github.com/veraengine/vira/internal/compile"
	"github.com/veraengine/vira/internal/model"
	"github.com/veraengine/vira/internal/normalize"
)

// Risk assessment labels for non-success outcomes.
const (
	labelAnalysisError = "Analysis Error"
	labelAssetNotFound = "Asset Not Found"
	labelUnknownRisk   = "Unknown Risk"
)

// outcome gathers what each pipeline stage produced for one analysis
// attempt. At most one of the error fields is set.
type outcome struct {
	tokenID    string
	compileErr error
	engineErr  error
	report     *model.RiskReport
	normErr    error
}

// classify converts an outcome into the final report. Rules are evaluated
// in order and the first match wins; every path, including the default,
// yields a well-formed report.
func classify(o outcome) *model.FinalReport {
	final := &model.FinalReport{
		TokenID:        o.tokenID,
		Status:         model.StatusFailed,
		RiskAssessment: &model.RiskReport{PotentialRiskType: labelAnalysisError},
		Details:        "An unexpected error occurred during analysis.",
	}

	switch {
	case isNotFound(o.compileErr):
		final.Status = model.StatusNotFound
		final.RiskAssessment = &model.RiskReport{PotentialRiskType: labelAssetNotFound}
		final.Details = o.compileErr.Error()

	case o.compileErr != nil:
		final.Details = o.compileErr.Error()

	case o.engineErr != nil:
		final.Details = o.engineErr.Error()

	case isMissingRiskFields(o.normErr):
		// Structurally valid reply without risk fields: the evidence was
		// sound, only the verdict is unusable.
		final.Status = model.StatusPartialSuccess
		final.RiskAssessment = &model.RiskReport{PotentialRiskType: labelUnknownRisk}
		final.Details = "Analysis engine returned an unexpected or empty result."

	case o.normErr != nil:
		final.Details = o.normErr.Error()

	case o.report != nil && (o.report.RiskCategory != "" || o.report.PotentialRiskType != ""):
		final.Status = model.StatusSuccess
		final.RiskAssessment = o.report
		final.Details = "Risk analysis completed successfully."
		final.AISummary = o.report.Summary
		final.RiskScore = o.report.RiskScore

	default:
		// Normalizer accepted the reply, yet no risk field survived.
		// Unreachable with the current normalizer, kept for safety.
		final.Status = model.StatusPartialSuccess
		final.RiskAssessment = &model.RiskReport{PotentialRiskType: labelUnknownRisk}
		final.Details = "Analysis engine returned an unexpected or empty result."
	}

	return final
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	ce, ok := compile.AsError(err)
	return ok && ce.Reason == compile.ReasonNotFound
}

func isMissingRiskFields(err error) bool {
	if err == nil {
		return false
	}
	ne, ok := normalize.AsError(err)
	return ok && ne.Reason == normalize.ReasonMissingRiskFields
}

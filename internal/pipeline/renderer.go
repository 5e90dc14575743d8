package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/veraengine/vira/internal/model"
)

// Renderer writes final reports to files and streams.
type Renderer struct {
	pretty bool
}

// NewRenderer creates a renderer. With pretty enabled, JSON output is
// indented for human consumption.
func NewRenderer(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// RenderJSON writes the report as JSON to the given path, or to stdout when
// the path is empty.
func (r *Renderer) RenderJSON(report *model.FinalReport, path string) error {
	data, err := r.marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, string(data))
		return err
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderSummary prints a short human-readable result line to w.
func (r *Renderer) RenderSummary(report *model.FinalReport, w io.Writer) {
	fmt.Fprintf(w, "%-14s %-16s", report.TokenID, report.Status)
	if report.RiskScore != nil {
		fmt.Fprintf(w, " score=%d", *report.RiskScore)
	}
	if report.RiskAssessment != nil && report.RiskAssessment.PotentialRiskType != "" {
		fmt.Fprintf(w, " risk=%q", report.RiskAssessment.PotentialRiskType)
	}
	fmt.Fprintln(w)
}

func (r *Renderer) marshal(report *model.FinalReport) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}

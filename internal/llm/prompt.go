package llm

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/veraengine/vira/internal/model"
)

// Deed documents embedded in the prompt are capped so payload size stays
// bounded regardless of source document length.
const (
	DeedContentLimit = 2000
	TruncationMarker = "..."
)

// Flat payload shapes sent to the engine. Field names are part of the
// engine contract and must stay stable.

type registryPayload struct {
	CofOID         string `json:"c_of_o_id"`
	PlotNumber     string `json:"plot_number"`
	BlockNumber    string `json:"block_number"`
	AreaName       string `json:"area_name"`
	State          string `json:"state"`
	OwnerName      string `json:"owner_name"`
	DateRegistered string `json:"date_registered"`
	Status         string `json:"status"`
}

type alertPayload struct {
	AlertID  string `json:"alert_id"`
	Date     string `json:"date"`
	Source   string `json:"source"`
	Category string `json:"category"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
}

type deedPayload struct {
	DocumentType  string `json:"document_type"`
	PropertyID    string `json:"property_id"`
	ContentLength int    `json:"content_length"`
	FullContent   string `json:"full_content"`
}

// BuildPrompt serializes an evidence bundle into the engine prompt. It is a
// pure, total function: every bundle produces a prompt, and alert order is
// preserved.
func BuildPrompt(b model.EvidenceBundle) string {
	registry := registryPayload{
		CofOID:         b.Registry.CofOID,
		PlotNumber:     b.Registry.PlotNumber,
		BlockNumber:    b.Registry.BlockNumber,
		AreaName:       b.Registry.AreaName,
		State:          b.Registry.State,
		OwnerName:      b.Registry.OwnerName,
		DateRegistered: b.Registry.DateRegistered,
		Status:         b.Registry.Status,
	}

	alerts := make([]alertPayload, 0, len(b.Alerts))
	for _, a := range b.Alerts {
		alerts = append(alerts, alertPayload{
			AlertID:  a.AlertID,
			Date:     a.Date,
			Source:   a.Source,
			Category: a.Category,
			Headline: a.Headline,
			Summary:  a.Summary,
		})
	}

	deed := deedPayload{
		DocumentType:  "Deed of Assignment",
		PropertyID:    b.TokenID,
		ContentLength: len(b.DeedText),
		FullContent:   TruncateDeed(b.DeedText),
	}

	// Marshaling flat structs of strings and ints cannot fail.
	registryJSON, _ := json.Marshal(registry)
	alertsJSON, _ := json.Marshal(alerts)
	deedJSON, _ := json.Marshal(deed)

	source := DataSourceLabel(b.Provenance)

	return fmt.Sprintf(`You are VIRA, a professional risk oracle for Nigerian real estate assets. Your task is to analyze the provided data from three sources and generate a realistic structured JSON report for property %s.

CONTEXT: Nigerian real estate carries inherent risks due to complex land laws, documentation challenges, and regulatory environment. Even the cleanest properties should reflect baseline investment risks.

--- INSTRUCTIONS ---
1. Assess the risk based on all three data sources.
2. The 'risk_score' must be an integer using these REALISTIC ranges:
   - "No Risk Found": 15-25 (Even clean properties have baseline market/regulatory risks)
   - "Financial Pledge": 45-65 (Moderate risk due to financial encumbrances)
   - "Title Dispute": 70-85 (High risk due to ownership conflicts)
   - "Government Revocation": 80-95 (Very high risk due to potential seizure)
3. The 'risk_category' must be one of: "Title Dispute", "Financial Pledge", "Government Revocation", or "No Risk Found".
4. The 'summary' must be a concise, one-paragraph explanation of your findings and why this risk score was assigned.
5. The 'evidence_summary' must detail the findings from each of the three sources.
6. IMPORTANT: Always assign realistic risk scores that reflect real-world property investment risks.
7. Data retrieved from: %s

--- NIGERIAN PROPERTY DATA ---
1. NIGERIAN LAND REGISTRY DATA: %s
2. DEED OF ASSIGNMENT DOCUMENT: %s
3. NIGERIAN GAZETTE ALERTS: %s

--- REQUIRED JSON OUTPUT FORMAT ---
Provide only the JSON object, nothing else.
{
    "risk_score": <integer>,
    "risk_category": "<string>",
    "summary": "<string>",
    "evidence_summary": [
        {"source": "Nigerian Land Registry", "result": "Success/Failure", "detail": "<string>"},
        {"source": "Deed of Assignment", "result": "Success/Failure", "detail": "<string>"},
        {"source": "Nigerian Gazette Alerts", "result": "Success/Failure", "detail": "<string>"}
    ],
    "data_source": "%s",
    "property_id": "%s"
}`, b.TokenID, source, registryJSON, deedJSON, alertsJSON, source, b.TokenID)
}

// TruncateDeed caps deed text at DeedContentLimit with an explicit marker
// appended, so the caller can tell a truncated document from a short one.
// The cut backs up to a rune boundary so the result stays valid UTF-8.
func TruncateDeed(text string) string {
	if len(text) <= DeedContentLimit {
		return text
	}
	cut := DeedContentLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + TruncationMarker
}

// DataSourceLabel renders provenance the way reports and prompts expect it.
func DataSourceLabel(p model.Provenance) string {
	if p == model.ProvenanceFallback {
		return "local files (primary store unavailable)"
	}
	return "primary store"
}

package model

import "fmt"

// RegistrySearchKeyTrait is the reserved attribute name that links token
// metadata to a land registry record. Metadata without it cannot be analyzed.
const RegistrySearchKeyTrait = "Registry Search Key"

// Attribute is one trait/value pair from an asset's token metadata.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Metadata is the token metadata document for one asset.
type Metadata struct {
	TokenID     string      `json:"token_id"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Image       string      `json:"image,omitempty"`
	Attributes  []Attribute `json:"attributes"`
}

// RegistryKey returns the value of the registry search key attribute, or
// false if the metadata does not carry one. The first matching attribute wins.
func (m Metadata) RegistryKey() (string, bool) {
	for _, attr := range m.Attributes {
		if attr.TraitType == RegistrySearchKeyTrait {
			return attr.Value, true
		}
	}
	return "", false
}

// RegistryRecord is one row of the land registry, keyed by c_of_o_id.
type RegistryRecord struct {
	CofOID         string `json:"c_of_o_id"`
	PlotNumber     string `json:"plot_number"`
	BlockNumber    string `json:"block_number"`
	AreaName       string `json:"area_name"`
	State          string `json:"state"`
	OwnerName      string `json:"owner_name"`
	DateRegistered string `json:"date_registered"`
	Status         string `json:"status"`
}

// Alert is one gazette or news alert held by the record store.
type Alert struct {
	AlertID  string `json:"alert_id"`
	Date     string `json:"date"`
	Source   string `json:"source"`
	Category string `json:"category"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
}

// Provenance records which backing store actually served a request.
type Provenance string

const (
	ProvenancePrimary  Provenance = "primary"
	ProvenanceFallback Provenance = "fallback"
)

// EvidenceBundle aggregates everything known about one asset for a single
// analysis call. It is constructed fresh per request and never cached.
type EvidenceBundle struct {
	TokenID     string         `json:"token_id"`
	Metadata    Metadata       `json:"metadata"`
	Registry    RegistryRecord `json:"registry_record"`
	Alerts      []Alert        `json:"news_alerts"`
	DeedText    string         `json:"deed_content"`
	RegistryKey string         `json:"registry_key"`
	Provenance  Provenance     `json:"data_source"`
}

// DeedPlaceholder is the text substituted when an asset has no deed document.
// A missing deed is never an error.
func DeedPlaceholder(tokenID string) string {
	return fmt.Sprintf("Deed document for %s not available.", tokenID)
}

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/veraengine/vira/internal/model"
)

// writeDataset lays out a minimal fallback dataset in a temp directory.
func writeDataset(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, metadataDir), 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(metadataDir, "NGA-LAG-001.json"): `{
			"token_id": "NGA-LAG-001",
			"name": "Lekki Plot 42",
			"attributes": [
				{"trait_type": "Registry Search Key", "value": "LAG/2021/0042"}
			]
		}`,
		registryFile: "c_of_o_id,plot_number,block_number,area_name,state,owner_name,date_registered,status\n" +
			"LAG/2021/0042,42,7B,Lekki Phase 1,Lagos,Adeyemi Balogun,2021-03-15,Active\n" +
			"LAG/2019/0108,108,2A,Epe,Lagos,Ngozi Okafor,2019-11-02,Encumbered\n",
		alertsFile: `[
			{"alert_id": "GAZ-001", "headline": "Revocation notice for Epe plots", "summary": "Plots owned by Ngozi Okafor"}
		]`,
		"NGA-LAG-001" + deedSuffix: "THIS DEED OF ASSIGNMENT is made between the Assignor and the Assignee...",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func newTestFallback(t *testing.T) *FallbackStore {
	t.Helper()
	return NewFallbackStore(model.FallbackConfig{Dir: writeDataset(t)}, zap.NewNop())
}

func TestFallbackStore_Metadata(t *testing.T) {
	s := newTestFallback(t)

	md, err := s.Metadata(context.Background(), "NGA-LAG-001")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if md.Name != "Lekki Plot 42" {
		t.Errorf("Name = %q, want %q", md.Name, "Lekki Plot 42")
	}

	if _, err := s.Metadata(context.Background(), "NGA-MISSING"); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent metadata: err = %v, want ErrNotFound", err)
	}
}

func TestFallbackStore_MetadataRejectsPathEscapes(t *testing.T) {
	s := newTestFallback(t)

	for _, tokenID := range []string{"", "..", "../NGA-LAG-001", "a/b", `a\b`} {
		if _, err := s.Metadata(context.Background(), tokenID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Metadata(%q): err = %v, want ErrNotFound", tokenID, err)
		}
	}
}

func TestFallbackStore_Registry(t *testing.T) {
	s := newTestFallback(t)

	rec, err := s.Registry(context.Background(), "LAG/2021/0042")
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if rec.OwnerName != "Adeyemi Balogun" {
		t.Errorf("OwnerName = %q, want %q", rec.OwnerName, "Adeyemi Balogun")
	}
	if rec.Status != "Active" {
		t.Errorf("Status = %q, want %q", rec.Status, "Active")
	}
}

func TestFallbackStore_RegistryMatchIsCaseSensitive(t *testing.T) {
	s := newTestFallback(t)

	if _, err := s.Registry(context.Background(), "lag/2021/0042"); !errors.Is(err, ErrNotFound) {
		t.Errorf("lowercased key: err = %v, want ErrNotFound", err)
	}
}

func TestFallbackStore_RegistryAbsentKey(t *testing.T) {
	s := newTestFallback(t)

	if _, err := s.Registry(context.Background(), "LAG/9999/0000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFallbackStore_Alerts(t *testing.T) {
	s := newTestFallback(t)

	alerts, err := s.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].AlertID != "GAZ-001" {
		t.Errorf("alerts = %v, want the single GAZ-001 entry", alerts)
	}

	// Second read must come from the parsed-table cache.
	again, err := s.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts (cached): %v", err)
	}
	if len(again) != 1 {
		t.Errorf("cached alerts = %v, want 1 entry", again)
	}
}

func TestFallbackStore_AlertsAbsentFileIsEmpty(t *testing.T) {
	s := NewFallbackStore(model.FallbackConfig{Dir: t.TempDir()}, zap.NewNop())

	alerts, err := s.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if alerts != nil {
		t.Errorf("alerts = %v, want nil", alerts)
	}
}

func TestFallbackStore_Deed(t *testing.T) {
	s := newTestFallback(t)

	deed, err := s.Deed(context.Background(), "NGA-LAG-001")
	if err != nil {
		t.Fatalf("Deed: %v", err)
	}
	if deed == "" {
		t.Error("Deed returned empty text")
	}

	if _, err := s.Deed(context.Background(), "NGA-LAG-002"); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent deed: err = %v, want ErrNotFound", err)
	}
}

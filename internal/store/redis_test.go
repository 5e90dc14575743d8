package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/veraengine/vira/internal/model"
)

func newTestPrimary(t *testing.T) (*PrimaryStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	s := NewPrimaryStore(model.PrimaryConfig{
		Addr:      mr.Addr(),
		KeyPrefix: "vira:",
		Timeout:   time.Second,
	}, zap.NewNop())
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestPrimaryStore_Metadata(t *testing.T) {
	s, mr := newTestPrimary(t)

	mr.Set("vira:metadata:NGA-LAG-001", `{
		"token_id": "NGA-LAG-001",
		"name": "Lekki Plot 42",
		"attributes": [
			{"trait_type": "Registry Search Key", "value": "LAG/2021/0042"}
		]
	}`)

	md, err := s.Metadata(context.Background(), "NGA-LAG-001")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if md.Name != "Lekki Plot 42" {
		t.Errorf("Name = %q, want %q", md.Name, "Lekki Plot 42")
	}

	key, ok := md.RegistryKey()
	if !ok || key != "LAG/2021/0042" {
		t.Errorf("RegistryKey = %q, %v; want %q, true", key, ok, "LAG/2021/0042")
	}
}

func TestPrimaryStore_MetadataFillsTokenID(t *testing.T) {
	s, mr := newTestPrimary(t)

	mr.Set("vira:metadata:NGA-LAG-002", `{"attributes": []}`)

	md, err := s.Metadata(context.Background(), "NGA-LAG-002")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if md.TokenID != "NGA-LAG-002" {
		t.Errorf("TokenID = %q, want %q", md.TokenID, "NGA-LAG-002")
	}
}

func TestPrimaryStore_MetadataAbsent(t *testing.T) {
	s, _ := newTestPrimary(t)

	_, err := s.Metadata(context.Background(), "NGA-MISSING")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPrimaryStore_Registry(t *testing.T) {
	s, mr := newTestPrimary(t)

	mr.Set("vira:registry:LAG/2021/0042", `{
		"c_of_o_id": "LAG/2021/0042",
		"owner_name": "Adeyemi Balogun",
		"status": "Active"
	}`)

	rec, err := s.Registry(context.Background(), "LAG/2021/0042")
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if rec.OwnerName != "Adeyemi Balogun" {
		t.Errorf("OwnerName = %q, want %q", rec.OwnerName, "Adeyemi Balogun")
	}

	if _, err := s.Registry(context.Background(), "LAG/9999/0000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent record: err = %v, want ErrNotFound", err)
	}
}

func TestPrimaryStore_AlertsAbsentTableIsEmpty(t *testing.T) {
	s, _ := newTestPrimary(t)

	alerts, err := s.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if alerts != nil {
		t.Errorf("alerts = %v, want nil", alerts)
	}
}

func TestPrimaryStore_Alerts(t *testing.T) {
	s, mr := newTestPrimary(t)

	mr.Set("vira:alerts", `[
		{"alert_id": "GAZ-001", "headline": "Revocation notice", "summary": "Plots in Epe"},
		{"alert_id": "GAZ-002", "headline": "Court ruling", "summary": "Balogun family dispute"}
	]`)

	alerts, err := s.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("len(alerts) = %d, want 2", len(alerts))
	}
	if alerts[0].AlertID != "GAZ-001" || alerts[1].AlertID != "GAZ-002" {
		t.Errorf("alert order not preserved: %v", alerts)
	}
}

func TestPrimaryStore_Deed(t *testing.T) {
	s, mr := newTestPrimary(t)

	mr.Set("vira:deed:NGA-LAG-001", "THIS DEED OF ASSIGNMENT is made this day...")

	deed, err := s.Deed(context.Background(), "NGA-LAG-001")
	if err != nil {
		t.Fatalf("Deed: %v", err)
	}
	if deed == "" {
		t.Error("Deed returned empty text")
	}

	if _, err := s.Deed(context.Background(), "NGA-MISSING"); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent deed: err = %v, want ErrNotFound", err)
	}
}

func TestPrimaryStore_DownServerIsUnavailable(t *testing.T) {
	s, mr := newTestPrimary(t)
	mr.Close()

	_, err := s.Metadata(context.Background(), "NGA-LAG-001")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("a dead backend must never look like an absent record")
	}
}

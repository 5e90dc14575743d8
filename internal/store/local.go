package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/veraengine/vira/internal/model"
)

// Dataset layout inside the fallback directory.
const (
	metadataDir  = "metadata"
	registryFile = "land_registry.csv"
	alertsFile   = "gazette_alerts.json"
	deedSuffix   = "_Deed_of_Assignment.txt"
)

// Cache keys for parsed tables.
const (
	tableRegistry = "registry"
	tableAlerts   = "alerts"
)

// FallbackStore reads the static local dataset used when the primary store
// is unreachable: one metadata file per asset, one registry table, one alert
// table, one deed file per asset. Parsed tables are kept in a short-TTL
// cache so repeated analyses do not reparse the files; bundles and reports
// are never cached.
type FallbackStore struct {
	dir    string
	tables *gocache.Cache
	log    *zap.Logger
}

// NewFallbackStore creates a fallback store rooted at cfg.Dir.
func NewFallbackStore(cfg model.FallbackConfig, log *zap.Logger) *FallbackStore {
	ttl := cfg.TableTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &FallbackStore{
		dir:    cfg.Dir,
		tables: gocache.New(ttl, 10*time.Minute),
		log:    log,
	}
}

// Metadata implements Store.
func (s *FallbackStore) Metadata(ctx context.Context, tokenID string) (*model.Metadata, error) {
	if !safeToken(tokenID) {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir, metadataDir, tokenID+".json"))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}

	var md model.Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("decode metadata for %q: %w", tokenID, err)
	}
	if md.TokenID == "" {
		md.TokenID = tokenID
	}
	return &md, nil
}

// Registry implements Store. Matching against the key column is exact and
// case-sensitive; the first matching row wins.
func (s *FallbackStore) Registry(ctx context.Context, key string) (*model.RegistryRecord, error) {
	records, err := s.registryTable()
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].CofOID == key {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// Alerts implements Store.
func (s *FallbackStore) Alerts(ctx context.Context) ([]model.Alert, error) {
	if cached, ok := s.tables.Get(tableAlerts); ok {
		return cached.([]model.Alert), nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, alertsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read alert table: %w", err)
	}

	var alerts []model.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil, fmt.Errorf("decode alert table: %w", err)
	}

	s.tables.SetDefault(tableAlerts, alerts)
	return alerts, nil
}

// Deed implements Store.
func (s *FallbackStore) Deed(ctx context.Context, tokenID string) (string, error) {
	if !safeToken(tokenID) {
		return "", ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir, tokenID+deedSuffix))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read deed file: %w", err)
	}
	return string(data), nil
}

// registryTable loads and caches the parsed registry CSV.
func (s *FallbackStore) registryTable() ([]model.RegistryRecord, error) {
	if cached, ok := s.tables.Get(tableRegistry); ok {
		return cached.([]model.RegistryRecord), nil
	}

	f, err := os.Open(filepath.Join(s.dir, registryFile))
	if err != nil {
		return nil, fmt.Errorf("open registry table: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse registry table: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	// Header-indexed so column order in the dataset does not matter.
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]model.RegistryRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, model.RegistryRecord{
			CofOID:         field(row, "c_of_o_id"),
			PlotNumber:     field(row, "plot_number"),
			BlockNumber:    field(row, "block_number"),
			AreaName:       field(row, "area_name"),
			State:          field(row, "state"),
			OwnerName:      field(row, "owner_name"),
			DateRegistered: field(row, "date_registered"),
			Status:         field(row, "status"),
		})
	}

	s.tables.SetDefault(tableRegistry, records)
	s.log.Debug("registry table loaded", zap.Int("rows", len(records)))
	return records, nil
}

// safeToken rejects token IDs that would escape the dataset directory when
// joined into a file path.
func safeToken(tokenID string) bool {
	if tokenID == "" || strings.Contains(tokenID, "..") {
		return false
	}
	return !strings.ContainsAny(tokenID, `/\`)
}

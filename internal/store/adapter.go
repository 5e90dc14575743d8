package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/veraengine/vira/internal/model"
)

// Adapter fronts the primary and fallback stores with a two-attempt
// sequential strategy: try the primary, and on unavailability (never on
// absence) transparently retry the identical lookup against the fallback.
// Failover is silent to the caller; provenance records which path served
// the request.
type Adapter struct {
	primary  Store
	fallback Store
	log      *zap.Logger
}

// NewAdapter creates an adapter over the two stores.
func NewAdapter(primary, fallback Store, log *zap.Logger) *Adapter {
	return &Adapter{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

// Snapshot is the raw record set for one asset from a single backing store.
// Registry resolution is deferred until the evidence compiler has extracted
// the registry key; Registry queries the same store that served the
// snapshot, with the same failover rule.
type Snapshot struct {
	Metadata   *model.Metadata
	Alerts     []model.Alert
	Deed       string
	Provenance model.Provenance

	adapter *Adapter
	src     Store
}

// Fetch loads metadata, the alert table, and the deed text for an asset.
//
// ErrNotFound is returned only when the metadata is absent from the store
// that served the request; this is the pipeline's sole NotFound trigger. A
// missing deed is substituted with a placeholder, never an error.
func (a *Adapter) Fetch(ctx context.Context, tokenID string) (*Snapshot, error) {
	snap, err := a.snapshot(ctx, a.primary, model.ProvenancePrimary, tokenID)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, ErrUnavailable) {
		return nil, err
	}

	a.log.Warn("primary store unavailable, falling back to local dataset",
		zap.String("token_id", tokenID),
		zap.Error(err))

	return a.snapshot(ctx, a.fallback, model.ProvenanceFallback, tokenID)
}

func (a *Adapter) snapshot(ctx context.Context, src Store, prov model.Provenance, tokenID string) (*Snapshot, error) {
	md, err := src.Metadata(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	alerts, err := src.Alerts(ctx)
	if err != nil {
		return nil, err
	}

	deed, err := src.Deed(ctx, tokenID)
	if errors.Is(err, ErrNotFound) {
		deed = model.DeedPlaceholder(tokenID)
	} else if err != nil {
		return nil, err
	}

	return &Snapshot{
		Metadata:   md,
		Alerts:     alerts,
		Deed:       deed,
		Provenance: prov,
		adapter:    a,
		src:        src,
	}, nil
}

// Registry resolves a registry record through the store that served this
// snapshot. If the primary store has become unavailable since the snapshot
// was taken, the lookup fails over to the fallback for this call alone;
// provenance keeps reflecting the store that served the metadata.
func (s *Snapshot) Registry(ctx context.Context, key string) (*model.RegistryRecord, error) {
	rec, err := s.src.Registry(ctx, key)
	if err == nil || !errors.Is(err, ErrUnavailable) {
		return rec, err
	}
	if s.Provenance == model.ProvenanceFallback {
		return nil, err
	}

	s.adapter.log.Warn("primary store lost mid-request, resolving registry record from fallback",
		zap.String("registry_key", key),
		zap.Error(err))

	return s.adapter.fallback.Registry(ctx, key)
}

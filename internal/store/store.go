// Package store provides uniform read access to asset records from either a
// networked primary store or a local filesystem-backed fallback store, with
// identical output shape regardless of source.
package store

import (
	"context"
	"errors"

	"github.com/veraengine/vira/internal/model"
)

var (
	// ErrNotFound signals that a record is definitively absent from a store.
	ErrNotFound = errors.New("store: record not found")

	// ErrUnavailable signals a transient backend failure (timeout,
	// connection refused, auth failure). It is distinguishable from absence
	// and triggers failover; it is never surfaced to a caller.
	ErrUnavailable = errors.New("store: backend unavailable")
)

// Store is the read contract both backing stores implement. No write path
// exists anywhere in the pipeline.
type Store interface {
	// Metadata returns the token metadata document for an asset.
	Metadata(ctx context.Context, tokenID string) (*model.Metadata, error)

	// Registry returns the registry record whose c_of_o_id exactly matches
	// key. At most one record matches; the first match wins.
	Registry(ctx context.Context, key string) (*model.RegistryRecord, error)

	// Alerts returns the full alert table. Relevance filtering happens
	// downstream in the evidence compiler.
	Alerts(ctx context.Context) ([]model.Alert, error)

	// Deed returns the raw deed text for an asset, or ErrNotFound when the
	// asset has no deed document.
	Deed(ctx context.Context, tokenID string) (string, error)
}

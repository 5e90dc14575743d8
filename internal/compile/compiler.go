// Package compile assembles the evidence bundle feeding one analysis: the
// metadata, its linked registry record, the relevant alerts, and the deed
// text, all obtained through the record store adapter.
package compile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/veraengine/vira/internal/model"
	"github.com/veraengine/vira/internal/store"
)

// Reason discriminates compile failures.
type Reason string

const (
	ReasonNotFound              Reason = "not_found"
	ReasonRegistryKeyMissing    Reason = "registry_key_missing"
	ReasonRegistryRecordMissing Reason = "registry_record_missing"
)

// Error is a typed compile failure. Only NotFound maps to a distinct
// caller-visible state; the other reasons surface as a generic failure with
// the message attached.
type Error struct {
	Reason Reason
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

// AsError extracts a compile error from an error chain.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Compiler builds evidence bundles. It is a pure aggregation step: all
// retry and failover logic lives in the store adapter.
type Compiler struct {
	adapter *store.Adapter
	log     *zap.Logger
}

// NewCompiler creates a compiler over the given adapter.
func NewCompiler(adapter *store.Adapter, log *zap.Logger) *Compiler {
	return &Compiler{
		adapter: adapter,
		log:     log,
	}
}

// Compile assembles the evidence bundle for one asset.
func (c *Compiler) Compile(ctx context.Context, tokenID string) (*model.EvidenceBundle, error) {
	snap, err := c.adapter.Fetch(ctx, tokenID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &Error{Reason: ReasonNotFound, Msg: "Asset not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch asset records: %w", err)
	}

	key, ok := snap.Metadata.RegistryKey()
	if !ok {
		return nil, &Error{
			Reason: ReasonRegistryKeyMissing,
			Msg:    fmt.Sprintf("metadata for %s carries no %q attribute", tokenID, model.RegistrySearchKeyTrait),
		}
	}

	record, err := snap.Registry(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &Error{
			Reason: ReasonRegistryRecordMissing,
			Msg:    fmt.Sprintf("no registry record matches key %q", key),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("resolve registry record: %w", err)
	}

	relevant := RelevantAlerts(snap.Alerts, record.OwnerName)

	c.log.Info("evidence bundle compiled",
		zap.String("token_id", tokenID),
		zap.String("registry_key", key),
		zap.String("owner", record.OwnerName),
		zap.Int("relevant_alerts", len(relevant)),
		zap.String("provenance", string(snap.Provenance)))

	return &model.EvidenceBundle{
		TokenID:     tokenID,
		Metadata:    *snap.Metadata,
		Registry:    *record,
		Alerts:      relevant,
		DeedText:    snap.Deed,
		RegistryKey: key,
		Provenance:  snap.Provenance,
	}, nil
}

// RelevantAlerts filters the alert table to those mentioning the owner in
// their summary or headline, case-insensitively, preserving input order. An
// empty owner name matches nothing: matching everything would flood the
// bundle with unrelated alerts.
func RelevantAlerts(alerts []model.Alert, ownerName string) []model.Alert {
	if ownerName == "" {
		return nil
	}

	needle := strings.ToLower(ownerName)
	var relevant []model.Alert
	for _, alert := range alerts {
		if strings.Contains(strings.ToLower(alert.Summary), needle) ||
			strings.Contains(strings.ToLower(alert.Headline), needle) {
			relevant = append(relevant, alert)
		}
	}
	return relevant
}

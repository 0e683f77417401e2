// Copyright 2025 MA-ISA Protocol
//
// Audit Trail Service
// Mirrors recovery audit records to Firestore for compliance dashboards

package firestore

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/maisa-protocol/integrity-accumulator/pkg/runtime"
	"github.com/maisa-protocol/integrity-accumulator/pkg/state"
)

// vectorHex renders a dimension vector as hex strings for document storage.
func vectorHex(v *state.DimensionVector) []string {
	out := make([]string, len(v.Values))
	for i := range v.Values {
		out[i] = hex.EncodeToString(v.Values[i][:])
	}
	return out
}

// AuditTrailService writes one document per recovery event under
// devices/<device_id>/recoveryAudits.
type AuditTrailService struct {
	client   *Client
	deviceID string
	logger   *log.Logger
}

// AuditTrailConfig holds configuration for the audit trail service.
type AuditTrailConfig struct {
	Client   *Client
	DeviceID string
	Logger   *log.Logger
}

// NewAuditTrailService creates a new audit trail service.
func NewAuditTrailService(cfg *AuditTrailConfig) (*AuditTrailService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("Firestore client is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.Writer(), "[AuditTrail] ", log.LstdFlags)
	}

	return &AuditTrailService{
		client:   cfg.Client,
		deviceID: cfg.DeviceID,
		logger:   cfg.Logger,
	}, nil
}

// IsEnabled returns whether the audit trail service is enabled.
func (a *AuditTrailService) IsEnabled() bool {
	return a.client != nil && a.client.IsEnabled()
}

// RecordRecovery mirrors one recovery audit. No-op when disabled.
func (a *AuditTrailService) RecordRecovery(ctx context.Context, audit *runtime.RecoveryAudit) error {
	if !a.IsEnabled() {
		return nil
	}

	entryID := audit.ID
	if entryID == "" {
		entryID = uuid.New().String()
	}

	doc := map[string]interface{}{
		"deviceId":            a.deviceID,
		"timestamp":           int64(audit.Timestamp),
		"preState":            vectorHex(&audit.PreState),
		"convergenceConstant": vectorHex(&audit.ConvergenceConstant),
		"postState":           vectorHex(&audit.PostState),
		"reason":              audit.Reason,
		"recordedAt":          time.Now().UTC(),
	}

	_, err := a.client.firestore.
		Collection("devices").Doc(a.deviceID).
		Collection("recoveryAudits").Doc(entryID).
		Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to write recovery audit %s: %w", entryID, err)
	}

	a.logger.Printf("mirrored recovery audit %s for %s", entryID, a.deviceID)
	return nil
}

// Copyright 2025 MA-ISA Protocol
//
// State and Audit Repositories
// PostgreSQL-backed Persistence plus the recovery audit trail

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maisa-protocol/integrity-accumulator/pkg/runtime"
	"github.com/maisa-protocol/integrity-accumulator/pkg/state"
)

// StateRepository implements runtime.Persistence over the device_states
// table. The row upsert is atomic; readers always see either the prior
// committed blob or the new one.
type StateRepository struct {
	client   *Client
	deviceID string
}

// NewStateRepository creates a persistence handle for a device.
func NewStateRepository(client *Client, deviceID string) *StateRepository {
	return &StateRepository{client: client, deviceID: deviceID}
}

// Save implements runtime.Persistence.Save.
func (r *StateRepository) Save(s *state.IntegrityState) error {
	_, err := r.client.db.Exec(`
		INSERT INTO device_states (device_id, blob, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (device_id) DO UPDATE SET blob = $2, updated_at = now()`,
		r.deviceID, s.Serialize())
	if err != nil {
		return &runtime.PersistenceError{Detail: fmt.Sprintf("failed to upsert state: %v", err), Err: err}
	}
	return nil
}

// Load implements runtime.Persistence.Load.
func (r *StateRepository) Load() (*state.IntegrityState, error) {
	var blob []byte
	err := r.client.db.QueryRow(
		`SELECT blob FROM device_states WHERE device_id = $1`, r.deviceID).Scan(&blob)
	if err != nil {
		return nil, &runtime.PersistenceError{Detail: fmt.Sprintf("failed to read state: %v", err), Err: err}
	}
	return state.Deserialize(blob)
}

// Exists implements runtime.Persistence.Exists.
func (r *StateRepository) Exists() bool {
	var one int
	err := r.client.db.QueryRow(
		`SELECT 1 FROM device_states WHERE device_id = $1`, r.deviceID).Scan(&one)
	return err == nil
}

// AuditRepository stores recovery audit records.
type AuditRepository struct {
	client *Client
}

// NewAuditRepository creates the audit store.
func NewAuditRepository(client *Client) *AuditRepository {
	return &AuditRepository{client: client}
}

// Record inserts one recovery audit for a device.
func (r *AuditRepository) Record(ctx context.Context, deviceID string, audit *runtime.RecoveryAudit) error {
	pre, err := json.Marshal(audit.PreState)
	if err != nil {
		return fmt.Errorf("failed to marshal pre-state: %w", err)
	}
	k, err := json.Marshal(audit.ConvergenceConstant)
	if err != nil {
		return fmt.Errorf("failed to marshal convergence constant: %w", err)
	}
	post, err := json.Marshal(audit.PostState)
	if err != nil {
		return fmt.Errorf("failed to marshal post-state: %w", err)
	}

	_, err = r.client.db.ExecContext(ctx, `
		INSERT INTO recovery_audits (id, device_id, ts, pre_state, k_vector, post_state, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		audit.ID, deviceID, int64(audit.Timestamp), pre, k, post, audit.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert recovery audit: %w", err)
	}
	return nil
}

// ListByDevice returns a device's audits ordered by timestamp.
func (r *AuditRepository) ListByDevice(ctx context.Context, deviceID string) ([]runtime.RecoveryAudit, error) {
	rows, err := r.client.db.QueryContext(ctx, `
		SELECT id, ts, pre_state, k_vector, post_state, reason
		FROM recovery_audits WHERE device_id = $1 ORDER BY ts`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recovery audits: %w", err)
	}
	defer rows.Close()

	var audits []runtime.RecoveryAudit
	for rows.Next() {
		var (
			audit        runtime.RecoveryAudit
			ts           int64
			pre, k, post []byte
		)
		if err := rows.Scan(&audit.ID, &ts, &pre, &k, &post, &audit.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan recovery audit: %w", err)
		}
		audit.Timestamp = uint64(ts)
		if err := json.Unmarshal(pre, &audit.PreState); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pre-state: %w", err)
		}
		if err := json.Unmarshal(k, &audit.ConvergenceConstant); err != nil {
			return nil, fmt.Errorf("failed to unmarshal convergence constant: %w", err)
		}
		if err := json.Unmarshal(post, &audit.PostState); err != nil {
			return nil, fmt.Errorf("failed to unmarshal post-state: %w", err)
		}
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}

// Get returns one audit by ID. sql.ErrNoRows surfaces as a wrapped error.
func (r *AuditRepository) Get(ctx context.Context, id string) (*runtime.RecoveryAudit, error) {
	var (
		audit        runtime.RecoveryAudit
		ts           int64
		pre, k, post []byte
	)
	err := r.client.db.QueryRowContext(ctx, `
		SELECT id, ts, pre_state, k_vector, post_state, reason
		FROM recovery_audits WHERE id = $1`, id).
		Scan(&audit.ID, &ts, &pre, &k, &post, &audit.Reason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recovery audit %s not found: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recovery audit: %w", err)
	}

	audit.Timestamp = uint64(ts)
	if err := json.Unmarshal(pre, &audit.PreState); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(k, &audit.ConvergenceConstant); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(post, &audit.PostState); err != nil {
		return nil, err
	}
	return &audit, nil
}

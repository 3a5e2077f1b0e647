package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harborlight/harborlight/internal/model"
)

type InterventionStore struct {
	db *sql.DB
}

func NewInterventionStore(db *sql.DB) *InterventionStore {
	return &InterventionStore{db: db}
}

// Create persists a triggered intervention. The record's ID and
// CreatedAt must already be set by the caller.
func (s *InterventionStore) Create(ctx context.Context, rec *model.InterventionRecord) error {
	actions, err := json.Marshal(rec.SuggestedActions)
	if err != nil {
		return fmt.Errorf("marshal suggested actions: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interventions
		   (id, subject_id, trigger_type, risk_score, message, suggested_actions, model_used, delivered, created_at, was_acknowledged)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		rec.ID, rec.SubjectID, rec.TriggerType, rec.RiskScore, rec.Message,
		string(actions), rec.ModelUsed, rec.Delivered, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create intervention: %w", err)
	}
	return nil
}

func (s *InterventionStore) GetByID(ctx context.Context, id string) (*model.InterventionRecord, error) {
	var rec model.InterventionRecord
	var actions string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subject_id, trigger_type, risk_score, message, suggested_actions,
		        model_used, delivered, created_at, acknowledged_at, was_acknowledged, was_helpful
		 FROM interventions WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.SubjectID, &rec.TriggerType, &rec.RiskScore, &rec.Message, &actions,
		&rec.ModelUsed, &rec.Delivered, &rec.CreatedAt, &rec.AcknowledgedAt, &rec.WasAcknowledged, &rec.WasHelpful)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get intervention: %w", err)
	}
	if err := json.Unmarshal([]byte(actions), &rec.SuggestedActions); err != nil {
		return nil, fmt.Errorf("unmarshal suggested actions: %w", err)
	}
	return &rec, nil
}

// HasUnacknowledged reports whether the subject has an intervention
// awaiting acknowledgment. At most one may be outstanding at a time.
func (s *InterventionStore) HasUnacknowledged(ctx context.Context, subjectID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM interventions WHERE subject_id = ? AND was_acknowledged = 0)`,
		subjectID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check unacknowledged intervention: %w", err)
	}
	return exists == 1, nil
}

// LatestCreatedAt returns when the subject was last contacted; ok is
// false for subjects never contacted.
func (s *InterventionStore) LatestCreatedAt(ctx context.Context, subjectID string) (time.Time, bool, error) {
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM interventions WHERE subject_id = ? ORDER BY created_at DESC LIMIT 1`,
		subjectID,
	).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest intervention: %w", err)
	}
	return createdAt, true, nil
}

// Acknowledge marks an intervention seen. Called by the app UI when the
// subject opens the notification.
func (s *InterventionStore) Acknowledge(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE interventions SET was_acknowledged = 1, acknowledged_at = ? WHERE id = ?`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("acknowledge intervention: %w", err)
	}
	return nil
}

// Rate records the subject's was-this-helpful answer.
func (s *InterventionStore) Rate(ctx context.Context, id string, helpful bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE interventions SET was_helpful = ? WHERE id = ?`, helpful, id)
	if err != nil {
		return fmt.Errorf("rate intervention: %w", err)
	}
	return nil
}

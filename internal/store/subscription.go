package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harborlight/harborlight/internal/model"
)

type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Upsert registers a subject's push subscription. One subscription per
// subject: re-registering (new browser, cleared storage) replaces the
// previous endpoint and keys.
func (s *SubscriptionStore) Upsert(ctx context.Context, subjectID, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (subject_id, endpoint, p256dh_key, auth_key, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(subject_id) DO UPDATE SET endpoint = excluded.endpoint, p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key`,
		subjectID, endpoint, p256dh, auth, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert push subscription: %w", err)
	}
	return s.GetBySubject(ctx, subjectID)
}

func (s *SubscriptionStore) GetBySubject(ctx context.Context, subjectID string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subject_id, endpoint, p256dh_key, auth_key, created_at
		 FROM push_subscriptions WHERE subject_id = ?`, subjectID,
	).Scan(&sub.ID, &sub.SubjectID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return &sub, nil
}

// DeleteBySubject removes a subject's subscription, typically after the
// push service reported the endpoint gone.
func (s *SubscriptionStore) DeleteBySubject(ctx context.Context, subjectID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE subject_id = ?`, subjectID)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

// ListSubscribed returns every subject holding a push subscription, the
// population a dispatch run iterates.
func (s *SubscriptionStore) ListSubscribed(ctx context.Context) ([]model.Subject, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sub.id, sub.display_name, sub.created_at
		 FROM subjects sub
		 JOIN push_subscriptions ps ON ps.subject_id = sub.id
		 ORDER BY sub.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list subscribed subjects: %w", err)
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var subject model.Subject
		if err := rows.Scan(&subject.ID, &subject.DisplayName, &subject.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harborlight/harborlight/internal/model"
)

type PreferencesStore struct {
	db *sql.DB
}

func NewPreferencesStore(db *sql.DB) *PreferencesStore {
	return &PreferencesStore{db: db}
}

// Get returns the subject's notification preferences, falling back to
// defaults when the subject never opened the settings screen.
func (s *PreferencesStore) Get(ctx context.Context, subjectID string) (model.NotificationPreferences, error) {
	var prefs model.NotificationPreferences
	err := s.db.QueryRowContext(ctx,
		`SELECT subject_id, proactive_enabled, proactive_frequency,
		        quiet_hours_enabled, quiet_hours_start, quiet_hours_end, timezone
		 FROM notification_preferences WHERE subject_id = ?`, subjectID,
	).Scan(&prefs.SubjectID, &prefs.ProactiveEnabled, &prefs.ProactiveFrequency,
		&prefs.QuietHoursEnabled, &prefs.QuietHoursStart, &prefs.QuietHoursEnd, &prefs.Timezone)
	if err == sql.ErrNoRows {
		return model.DefaultPreferences(subjectID), nil
	}
	if err != nil {
		return model.NotificationPreferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

// Upsert writes a subject's preferences. Called by the settings surface;
// this service only reads.
func (s *PreferencesStore) Upsert(ctx context.Context, prefs model.NotificationPreferences) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_preferences
		   (subject_id, proactive_enabled, proactive_frequency, quiet_hours_enabled, quiet_hours_start, quiet_hours_end, timezone)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(subject_id) DO UPDATE SET
		   proactive_enabled = excluded.proactive_enabled,
		   proactive_frequency = excluded.proactive_frequency,
		   quiet_hours_enabled = excluded.quiet_hours_enabled,
		   quiet_hours_start = excluded.quiet_hours_start,
		   quiet_hours_end = excluded.quiet_hours_end,
		   timezone = excluded.timezone`,
		prefs.SubjectID, prefs.ProactiveEnabled, prefs.ProactiveFrequency,
		prefs.QuietHoursEnabled, prefs.QuietHoursStart, prefs.QuietHoursEnd, prefs.Timezone,
	)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

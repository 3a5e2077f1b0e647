package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harborlight/harborlight/internal/model"
)

// HistoryStore backs the risk collector's windowed queries. The write
// methods exist for the app's CRUD surface and for seeding tests; this
// service itself only reads.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) AddCheckIn(ctx context.Context, subjectID string, mood, urge int, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO check_ins (subject_id, mood_score, urge_intensity, created_at) VALUES (?, ?, ?, ?)`,
		subjectID, mood, urge, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("add check-in: %w", err)
	}
	return nil
}

func (s *HistoryStore) AddBiometricLog(ctx context.Context, subjectID string, stress int, sleepHours float64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO biometric_logs (subject_id, stress_level, sleep_hours, recorded_at) VALUES (?, ?, ?, ?)`,
		subjectID, stress, sleepHours, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("add biometric log: %w", err)
	}
	return nil
}

func (s *HistoryStore) AddRelapse(ctx context.Context, subjectID, notes string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO relapse_events (subject_id, notes, occurred_at) VALUES (?, ?, ?)`,
		subjectID, notes, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("add relapse: %w", err)
	}
	return nil
}

func (s *HistoryStore) AddJournalEntry(ctx context.Context, subjectID, sentiment string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (subject_id, sentiment, created_at) VALUES (?, ?, ?)`,
		subjectID, sentiment, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("add journal entry: %w", err)
	}
	return nil
}

func (s *HistoryStore) AddChatMessage(ctx context.Context, subjectID, role string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (subject_id, role, created_at) VALUES (?, ?, ?)`,
		subjectID, role, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("add chat message: %w", err)
	}
	return nil
}

func (s *HistoryStore) CheckInsSince(ctx context.Context, subjectID string, since time.Time) ([]model.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject_id, mood_score, urge_intensity, created_at
		 FROM check_ins WHERE subject_id = ? AND created_at >= ?
		 ORDER BY created_at DESC`,
		subjectID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("check-ins since: %w", err)
	}
	defer rows.Close()
	return scanCheckIns(rows)
}

func (s *HistoryStore) RecentCheckIns(ctx context.Context, subjectID string, limit int) ([]model.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject_id, mood_score, urge_intensity, created_at
		 FROM check_ins WHERE subject_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		subjectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent check-ins: %w", err)
	}
	defer rows.Close()
	return scanCheckIns(rows)
}

func (s *HistoryStore) UserChatCountSince(ctx context.Context, subjectID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages
		 WHERE subject_id = ? AND role = 'user' AND created_at >= ?`,
		subjectID, since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("chat count since: %w", err)
	}
	return count, nil
}

func (s *HistoryStore) BiometricLogsSince(ctx context.Context, subjectID string, since time.Time) ([]model.BiometricLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject_id, stress_level, sleep_hours, recorded_at
		 FROM biometric_logs WHERE subject_id = ? AND recorded_at >= ?
		 ORDER BY recorded_at DESC`,
		subjectID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("biometric logs since: %w", err)
	}
	defer rows.Close()

	var logs []model.BiometricLog
	for rows.Next() {
		var l model.BiometricLog
		if err := rows.Scan(&l.ID, &l.SubjectID, &l.StressLevel, &l.SleepHours, &l.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan biometric log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *HistoryStore) RelapseCountSince(ctx context.Context, subjectID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM relapse_events WHERE subject_id = ? AND occurred_at >= ?`,
		subjectID, since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("relapse count since: %w", err)
	}
	return count, nil
}

func (s *HistoryStore) RecentJournalEntries(ctx context.Context, subjectID string, limit int) ([]model.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject_id, sentiment, created_at
		 FROM journal_entries WHERE subject_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		subjectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent journal entries: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		var e model.JournalEntry
		if err := rows.Scan(&e.ID, &e.SubjectID, &e.Sentiment, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanCheckIns(rows *sql.Rows) ([]model.CheckIn, error) {
	var checkIns []model.CheckIn
	for rows.Next() {
		var ci model.CheckIn
		if err := rows.Scan(&ci.ID, &ci.SubjectID, &ci.MoodScore, &ci.UrgeIntensity, &ci.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		checkIns = append(checkIns, ci)
	}
	return checkIns, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborlight/harborlight/internal/model"
)

type SubjectStore struct {
	db *sql.DB
}

func NewSubjectStore(db *sql.DB) *SubjectStore {
	return &SubjectStore{db: db}
}

func (s *SubjectStore) Create(ctx context.Context, displayName string) (*model.Subject, error) {
	subject := &model.Subject{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subjects (id, display_name, created_at) VALUES (?, ?, ?)`,
		subject.ID, subject.DisplayName, subject.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return subject, nil
}

func (s *SubjectStore) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, created_at FROM subjects WHERE id = ?`, id,
	).Scan(&subject.ID, &subject.DisplayName, &subject.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &subject, nil
}

package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/harborlight/harborlight/internal/database"
	"github.com/harborlight/harborlight/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestSubject(t *testing.T, db *sql.DB, name string) *model.Subject {
	t.Helper()
	subject, err := NewSubjectStore(db).Create(context.Background(), name)
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}
	return subject
}

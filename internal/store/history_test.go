package store

import (
	"context"
	"testing"
	"time"

	"github.com/harborlight/harborlight/internal/model"
)

func TestCheckInWindows(t *testing.T) {
	db := setupTestDB(t)
	subject := createTestSubject(t, db, "Sam")
	s := NewHistoryStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	times := []time.Time{
		now.Add(-1 * time.Hour),
		now.Add(-3 * 24 * time.Hour),
		now.Add(-10 * 24 * time.Hour),
	}
	for i, at := range times {
		if err := s.AddCheckIn(ctx, subject.ID, 3+i%2, i, at); err != nil {
			t.Fatalf("add check-in: %v", err)
		}
	}

	week, err := s.CheckInsSince(ctx, subject.ID, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("check-ins since: %v", err)
	}
	if len(week) != 2 {
		t.Errorf("7d window = %d check-ins, want 2", len(week))
	}
	// Newest first.
	if len(week) == 2 && week[0].CreatedAt.Before(week[1].CreatedAt) {
		t.Error("check-ins not ordered newest first")
	}

	recent, err := s.RecentCheckIns(ctx, subject.ID, 2)
	if err != nil {
		t.Fatalf("recent check-ins: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent limit 2 = %d check-ins", len(recent))
	}
}

func TestUserChatCountIgnoresAssistant(t *testing.T) {
	db := setupTestDB(t)
	subject := createTestSubject(t, db, "Sam")
	s := NewHistoryStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.AddChatMessage(ctx, subject.ID, "assistant", now.Add(-1*time.Hour)); err != nil {
		t.Fatalf("add chat message: %v", err)
	}
	if err := s.AddChatMessage(ctx, subject.ID, "user", now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("add chat message: %v", err)
	}
	if err := s.AddChatMessage(ctx, subject.ID, "user", now.Add(-10*24*time.Hour)); err != nil {
		t.Fatalf("add chat message: %v", err)
	}

	count, err := s.UserChatCountSince(ctx, subject.ID, now.Add(-3*24*time.Hour))
	if err != nil {
		t.Fatalf("chat count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (assistant turns and old turns excluded)", count)
	}
}

func TestRelapseCount(t *testing.T) {
	db := setupTestDB(t)
	subject := createTestSubject(t, db, "Sam")
	s := NewHistoryStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.AddRelapse(ctx, subject.ID, "", now.Add(-10*24*time.Hour)); err != nil {
		t.Fatalf("add relapse: %v", err)
	}
	if err := s.AddRelapse(ctx, subject.ID, "", now.Add(-70*24*time.Hour)); err != nil {
		t.Fatalf("add relapse: %v", err)
	}

	month, err := s.RelapseCountSince(ctx, subject.ID, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("relapse count: %v", err)
	}
	if month != 1 {
		t.Errorf("30d count = %d, want 1", month)
	}

	quarter, err := s.RelapseCountSince(ctx, subject.ID, now.Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("relapse count: %v", err)
	}
	if quarter != 2 {
		t.Errorf("90d count = %d, want 2", quarter)
	}
}

func TestBiometricsAndJournals(t *testing.T) {
	db := setupTestDB(t)
	subject := createTestSubject(t, db, "Sam")
	s := NewHistoryStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.AddBiometricLog(ctx, subject.ID, 9, 4.5, now.Add(-1*time.Hour)); err != nil {
		t.Fatalf("add biometric log: %v", err)
	}
	logs, err := s.BiometricLogsSince(ctx, subject.ID, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("biometric logs: %v", err)
	}
	if len(logs) != 1 || logs[0].StressLevel != 9 || logs[0].SleepHours != 4.5 {
		t.Errorf("logs = %+v", logs)
	}

	for i, sentiment := range []string{model.SentimentNegative, model.SentimentNegative, model.SentimentPositive, model.SentimentNeutral} {
		if err := s.AddJournalEntry(ctx, subject.ID, sentiment, now.Add(-time.Duration(i+1)*time.Hour)); err != nil {
			t.Fatalf("add journal entry: %v", err)
		}
	}
	entries, err := s.RecentJournalEntries(ctx, subject.ID, 3)
	if err != nil {
		t.Fatalf("journal entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	if entries[0].Sentiment != model.SentimentNegative {
		t.Errorf("newest entry sentiment = %q", entries[0].Sentiment)
	}
}

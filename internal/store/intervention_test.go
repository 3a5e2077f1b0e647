package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harborlight/harborlight/internal/model"
)

func newTestRecord(subjectID string, createdAt time.Time) *model.InterventionRecord {
	return &model.InterventionRecord{
		ID:               uuid.NewString(),
		SubjectID:        subjectID,
		TriggerType:      model.TriggerHighPriorityCheckIn,
		RiskScore:        0.75,
		Message:          "Hi Sam, just checking in.",
		SuggestedActions: []string{model.ActionDoCheckIn, model.ActionTalkToCoach},
		ModelUsed:        "template",
		Delivered:        true,
		CreatedAt:        createdAt,
	}
}

func TestCreateAndGetIntervention(t *testing.T) {
	db := setupTestDB(t)
	subject := createTestSubject(t, db, "Sam")
	s := NewInterventionStore(db)
	ctx := context.Background()

	rec := newTestRecord(subject.ID, time.Now().UTC())
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create intervention: %v", err)
	}

	got, err := s.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get intervention: %v", err)
	}
	if got == nil {
		t.Fatal("intervention not found")
	}
	if got.TriggerType != rec.TriggerType {
		t.Errorf("trigger = %q, want %q", got.TriggerType, rec.TriggerType)
	}
	if got.RiskScore != rec.RiskScore {
		t.Errorf("risk score = %v, want %v", got.RiskScore, rec.RiskScore)
	}
	if len(got.SuggestedActions) != 2 || got.SuggestedActions[0] != model.ActionDoCheckIn {
		t.Errorf("suggested actions = %v", got.SuggestedActions)
	}
	if got.WasAcknowledged {
		t.Error("new intervention must start unacknowledged")
	}
	if got.WasHelpful != nil {
		t.Error("was_helpful must start unset")
	}
}

func TestHasUnacknowledged(t *testing.T) {
	db := setupTestDB(t)
	subject := createTestSubject(t, db, "Sam")
	s := NewInterventionStore(db)
	ctx := context.Background()

	outstanding, err := s.HasUnacknowledged(ctx, subject.ID)
	if err != nil {
		t.Fatalf("has unacknowledged: %v", err)
	}
	if outstanding {
		t.Error("expected no outstanding intervention")
	}

	rec := newTestRecord(subject.ID, time.Now().UTC())
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create intervention: %v", err)
	}

	outstanding, err = s.HasUnacknowledged(ctx, subject.ID)
	if err != nil {
		t.Fatalf("has unacknowledged: %v", err)
	}
	if !outstanding {
		t.Error("expected an outstanding intervention")
	}

	if err := s.Acknowledge(ctx, rec.ID, time.Now().UTC()); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	outstanding, err = s.HasUnacknowledged(ctx, subject.ID)
	if err != nil {
		t.Fatalf("has unacknowledged: %v", err)
	}
	if outstanding {
		t.Error("expected no outstanding intervention after acknowledge")
	}
}

func TestLatestCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	subject := createTestSubject(t, db, "Sam")
	s := NewInterventionStore(db)
	ctx := context.Background()

	_, ok, err := s.LatestCreatedAt(ctx, subject.ID)
	if err != nil {
		t.Fatalf("latest created at: %v", err)
	}
	if ok {
		t.Error("expected ok=false for never-contacted subject")
	}

	older := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
	newer := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
	for _, at := range []time.Time{older, newer} {
		rec := newTestRecord(subject.ID, at)
		if err := s.Create(ctx, rec); err != nil {
			t.Fatalf("create intervention: %v", err)
		}
	}

	got, ok, err := s.LatestCreatedAt(ctx, subject.ID)
	if err != nil {
		t.Fatalf("latest created at: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	if !got.Equal(newer) {
		t.Errorf("latest = %v, want %v", got, newer)
	}
}

func TestRateIntervention(t *testing.T) {
	db := setupTestDB(t)
	subject := createTestSubject(t, db, "Sam")
	s := NewInterventionStore(db)
	ctx := context.Background()

	rec := newTestRecord(subject.ID, time.Now().UTC())
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create intervention: %v", err)
	}
	if err := s.Rate(ctx, rec.ID, true); err != nil {
		t.Fatalf("rate: %v", err)
	}

	got, err := s.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get intervention: %v", err)
	}
	if got.WasHelpful == nil || !*got.WasHelpful {
		t.Errorf("was_helpful = %v, want true", got.WasHelpful)
	}
}

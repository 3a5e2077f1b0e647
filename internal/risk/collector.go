package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/harborlight/harborlight/internal/model"
)

// Fixed lookback windows for the collector's checks.
const (
	checkInWindow  = 2 * 24 * time.Hour
	chatWindow     = 3 * 24 * time.Hour
	weekWindow     = 7 * 24 * time.Hour
	relapseWindow  = 30 * 24 * time.Hour
	relapsesWindow = 90 * 24 * time.Hour
)

// HistoryProvider supplies the time-windowed behavioral records the
// collector evaluates. Implemented by store.HistoryStore.
type HistoryProvider interface {
	CheckInsSince(ctx context.Context, subjectID string, since time.Time) ([]model.CheckIn, error)
	RecentCheckIns(ctx context.Context, subjectID string, limit int) ([]model.CheckIn, error)
	UserChatCountSince(ctx context.Context, subjectID string, since time.Time) (int, error)
	BiometricLogsSince(ctx context.Context, subjectID string, since time.Time) ([]model.BiometricLog, error)
	RelapseCountSince(ctx context.Context, subjectID string, since time.Time) (int, error)
	RecentJournalEntries(ctx context.Context, subjectID string, limit int) ([]model.JournalEntry, error)
}

// Collector runs the independent risk checks for one subject. Each
// check inspects only its own window and emits zero or one signal;
// checks never interact.
type Collector struct {
	history HistoryProvider
	now     func() time.Time
}

func NewCollector(history HistoryProvider) *Collector {
	return &Collector{history: history, now: time.Now}
}

// Collect evaluates every check and returns the triggered signals in a
// fixed order. Signals are computed fresh each call and never stored.
func (c *Collector) Collect(ctx context.Context, subjectID string) ([]Signal, error) {
	now := c.now()
	var signals []Signal

	weekCheckIns, err := c.history.CheckInsSince(ctx, subjectID, now.Add(-weekWindow))
	if err != nil {
		return nil, fmt.Errorf("query check-ins: %w", err)
	}

	if !anySince(weekCheckIns, now.Add(-checkInWindow)) {
		signals = append(signals, newSignal(SignalMissedCheckIns))
	}

	chatCount, err := c.history.UserChatCountSince(ctx, subjectID, now.Add(-chatWindow))
	if err != nil {
		return nil, fmt.Errorf("query chat activity: %w", err)
	}
	if chatCount == 0 {
		signals = append(signals, newSignal(SignalChatInactivity))
	}

	recent, err := c.history.RecentCheckIns(ctx, subjectID, 3)
	if err != nil {
		return nil, fmt.Errorf("query recent check-ins: %w", err)
	}
	if len(recent) == 3 {
		var moodSum int
		for _, ci := range recent {
			moodSum += ci.MoodScore
		}
		if float64(moodSum)/3 <= 2 {
			signals = append(signals, newSignal(SignalDecliningMood))
		}
	}

	if len(weekCheckIns) > 0 {
		var urgeSum int
		for _, ci := range weekCheckIns {
			urgeSum += ci.UrgeIntensity
		}
		if float64(urgeSum)/float64(len(weekCheckIns)) >= 7 {
			signals = append(signals, newSignal(SignalHighUrges))
		}
	}

	biometrics, err := c.history.BiometricLogsSince(ctx, subjectID, now.Add(-weekWindow))
	if err != nil {
		return nil, fmt.Errorf("query biometrics: %w", err)
	}
	if len(biometrics) > 0 {
		var stressSum int
		var sleepSum float64
		for _, b := range biometrics {
			stressSum += b.StressLevel
			sleepSum += b.SleepHours
		}
		n := float64(len(biometrics))
		if float64(stressSum)/n >= 8 {
			signals = append(signals, newSignal(SignalHighStress))
		}
		if sleepSum/n < 5 {
			signals = append(signals, newSignal(SignalPoorSleep))
		}
	}

	recentRelapses, err := c.history.RelapseCountSince(ctx, subjectID, now.Add(-relapseWindow))
	if err != nil {
		return nil, fmt.Errorf("query relapses: %w", err)
	}
	if recentRelapses >= 1 {
		signals = append(signals, newSignal(SignalRecentRelapse))
	}

	quarterRelapses, err := c.history.RelapseCountSince(ctx, subjectID, now.Add(-relapsesWindow))
	if err != nil {
		return nil, fmt.Errorf("query relapse history: %w", err)
	}
	if quarterRelapses >= 2 {
		signals = append(signals, newSignal(SignalMultipleRelapses))
	}

	journals, err := c.history.RecentJournalEntries(ctx, subjectID, 3)
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	negative := 0
	for _, j := range journals {
		if j.Sentiment == model.SentimentNegative {
			negative++
		}
	}
	if negative >= 2 {
		signals = append(signals, newSignal(SignalJournalDecline))
	}

	return signals, nil
}

func anySince(checkIns []model.CheckIn, since time.Time) bool {
	for _, ci := range checkIns {
		if ci.CreatedAt.After(since) {
			return true
		}
	}
	return false
}

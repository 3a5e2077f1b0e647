package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/harborlight/harborlight/internal/model"
	"github.com/harborlight/harborlight/internal/risk"
)

// Decision thresholds and cooldown schedule.
const (
	proceedThreshold = 0.4
	bypassThreshold  = 0.7
)

var cooldownByFrequency = map[string]time.Duration{
	model.FrequencyLow:    24 * time.Hour,
	model.FrequencyMedium: 6 * time.Hour,
	model.FrequencyHigh:   0,
}

// SkipReason says which gate stopped an evaluation.
type SkipReason string

const (
	SkipDisabled    SkipReason = "proactive_disabled"
	SkipQuietHours  SkipReason = "quiet_hours"
	SkipOutstanding SkipReason = "outstanding_intervention"
	SkipLowRisk     SkipReason = "below_threshold"
	SkipCooldown    SkipReason = "cooldown"
)

// Decision is the outcome of one policy evaluation. When Proceed is
// false, Skip names the gate that suppressed the intervention.
type Decision struct {
	Proceed     bool
	Skip        SkipReason
	Signals     []risk.Signal
	RiskScore   float64
	HasCritical bool
	TriggerType string
}

// SignalCollector gathers a subject's triggered risk signals.
type SignalCollector interface {
	Collect(ctx context.Context, subjectID string) ([]risk.Signal, error)
}

// InterventionReader exposes the two pieces of intervention history the
// gates need.
type InterventionReader interface {
	HasUnacknowledged(ctx context.Context, subjectID string) (bool, error)
	LatestCreatedAt(ctx context.Context, subjectID string) (time.Time, bool, error)
}

// Engine decides whether a subject should be proactively contacted
// right now.
type Engine struct {
	collector     SignalCollector
	interventions InterventionReader
	now           func() time.Time
}

func NewEngine(collector SignalCollector, interventions InterventionReader) *Engine {
	return &Engine{collector: collector, interventions: interventions, now: time.Now}
}

// Evaluate runs the gates in fixed order: proactive-disabled, quiet
// hours, outstanding intervention, risk decision, cooldown.
//
// The quiet-hours gate runs before any risk computation and is never
// bypassed, even by critical signals; only the cooldown has a
// critical-risk bypass. Respecting the configured window absolutely is
// deliberate product behavior.
func (e *Engine) Evaluate(ctx context.Context, subjectID string, prefs model.NotificationPreferences) (Decision, error) {
	if !prefs.ProactiveEnabled {
		return Decision{Skip: SkipDisabled}, nil
	}

	if prefs.QuietHoursEnabled {
		hour := e.now().In(subjectLocation(prefs.Timezone)).Hour()
		if InQuietWindow(hour, prefs.QuietHoursStart, prefs.QuietHoursEnd) {
			return Decision{Skip: SkipQuietHours}, nil
		}
	}

	outstanding, err := e.interventions.HasUnacknowledged(ctx, subjectID)
	if err != nil {
		return Decision{}, fmt.Errorf("check outstanding intervention: %w", err)
	}
	if outstanding {
		return Decision{Skip: SkipOutstanding}, nil
	}

	signals, err := e.collector.Collect(ctx, subjectID)
	if err != nil {
		return Decision{}, fmt.Errorf("collect signals: %w", err)
	}

	score := risk.Score(signals)
	hasCritical := risk.HasCritical(signals)

	if !shouldProceed(signals, score) {
		return Decision{Skip: SkipLowRisk, Signals: signals, RiskScore: score, HasCritical: hasCritical}, nil
	}

	if !(score >= bypassThreshold || hasCritical) {
		if cooldown := cooldownByFrequency[prefs.ProactiveFrequency]; cooldown > 0 {
			last, ok, err := e.interventions.LatestCreatedAt(ctx, subjectID)
			if err != nil {
				return Decision{}, fmt.Errorf("check last intervention: %w", err)
			}
			if ok && e.now().Sub(last) < cooldown {
				return Decision{Skip: SkipCooldown, Signals: signals, RiskScore: score, HasCritical: hasCritical}, nil
			}
		}
	}

	return Decision{
		Proceed:     true,
		Signals:     signals,
		RiskScore:   score,
		HasCritical: hasCritical,
		TriggerType: triggerType(signals, score, hasCritical),
	}, nil
}

func shouldProceed(signals []risk.Signal, score float64) bool {
	if score >= proceedThreshold {
		return true
	}
	for _, s := range signals {
		if s.Severity == risk.SeverityHigh || s.Severity == risk.SeverityCritical {
			return true
		}
	}
	return false
}

func triggerType(signals []risk.Signal, score float64, hasCritical bool) string {
	if hasCritical {
		return model.TriggerCriticalOutreach
	}
	if score >= bypassThreshold {
		return model.TriggerHighPriorityCheckIn
	}
	if dominant, ok := risk.Dominant(signals); ok {
		return string(dominant.Type)
	}
	return model.TriggerHighPriorityCheckIn
}

// InQuietWindow reports whether hour falls inside [start, end) on the
// subject's local clock, handling windows that wrap midnight
// (start > end means the window spans it).
func InQuietWindow(hour, start, end int) bool {
	if start > end {
		return hour >= start || hour < end
	}
	return hour >= start && hour < end
}

func subjectLocation(timezone string) *time.Location {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

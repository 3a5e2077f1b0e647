package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harborlight/harborlight/internal/message"
	"github.com/harborlight/harborlight/internal/model"
	"github.com/harborlight/harborlight/internal/policy"
	"github.com/harborlight/harborlight/internal/webpush"
)

// SubscriptionStore is the subscription lifecycle surface the
// orchestrator needs: who to process, their keys, and deletion when a
// push service reports an endpoint gone.
type SubscriptionStore interface {
	ListSubscribed(ctx context.Context) ([]model.Subject, error)
	GetBySubject(ctx context.Context, subjectID string) (*model.PushSubscription, error)
	DeleteBySubject(ctx context.Context, subjectID string) error
}

// PreferencesProvider returns a subject's notification preferences.
type PreferencesProvider interface {
	Get(ctx context.Context, subjectID string) (model.NotificationPreferences, error)
}

// PolicyEngine decides whether a subject should be contacted.
type PolicyEngine interface {
	Evaluate(ctx context.Context, subjectID string, prefs model.NotificationPreferences) (policy.Decision, error)
}

// MessageChain produces the intervention text.
type MessageChain interface {
	Generate(ctx context.Context, in message.Input) (message.Result, error)
}

// InterventionWriter appends intervention records.
type InterventionWriter interface {
	Create(ctx context.Context, rec *model.InterventionRecord) error
}

// PushSender delivers one encrypted record.
type PushSender interface {
	Send(ctx context.Context, endpoint string, record []byte, authorization string) error
}

// Stats aggregates one run's outcomes.
type Stats struct {
	Processed       int
	Notified        int
	Skipped         int
	CooldownSkipped int
	Expired         int
	Failed          int
}

// Orchestrator runs the per-subject pipeline: evaluate policy, generate
// a message, encrypt, deliver, persist. Subjects are independent; one
// failure never aborts the run.
type Orchestrator struct {
	subs          SubscriptionStore
	prefs         PreferencesProvider
	engine        PolicyEngine
	chain         MessageChain
	interventions InterventionWriter
	push          PushSender
	keys          *webpush.VAPIDKeys
	log           *slog.Logger

	workers        int
	subjectTimeout time.Duration
	now            func() time.Time
}

func NewOrchestrator(
	subs SubscriptionStore,
	prefs PreferencesProvider,
	engine PolicyEngine,
	chain MessageChain,
	interventions InterventionWriter,
	push PushSender,
	keys *webpush.VAPIDKeys,
	log *slog.Logger,
	workers int,
	subjectTimeout time.Duration,
) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		subs:           subs,
		prefs:          prefs,
		engine:         engine,
		chain:          chain,
		interventions:  interventions,
		push:           push,
		keys:           keys,
		log:            log,
		workers:        workers,
		subjectTimeout: subjectTimeout,
		now:            time.Now,
	}
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCooldown
	outcomeNotified
	outcomeExpired
	outcomeFailed
)

// Run processes every subscribed subject through a bounded worker pool.
// Each worker writes its outcome to its own slot; stats are reduced
// after the pool drains, so no counter is shared while workers run.
func (o *Orchestrator) Run(ctx context.Context) (Stats, error) {
	subjects, err := o.subs.ListSubscribed(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list subscribed subjects: %w", err)
	}

	outcomes := make([]outcome, len(subjects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, subject := range subjects {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, o.subjectTimeout)
			defer cancel()
			outcomes[i] = o.processSubject(sctx, subject)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	stats := Stats{Processed: len(subjects)}
	for _, oc := range outcomes {
		switch oc {
		case outcomeNotified:
			stats.Notified++
		case outcomeCooldown:
			stats.CooldownSkipped++
		case outcomeExpired:
			stats.Expired++
		case outcomeFailed:
			stats.Failed++
		default:
			stats.Skipped++
		}
	}
	return stats, nil
}

func (o *Orchestrator) processSubject(ctx context.Context, subject model.Subject) outcome {
	start := o.now()

	prefs, err := o.prefs.Get(ctx, subject.ID)
	if err != nil {
		return o.fail(subject.ID, "load preferences", err)
	}

	decision, err := o.engine.Evaluate(ctx, subject.ID, prefs)
	if err != nil {
		return o.fail(subject.ID, "evaluate policy", err)
	}
	if !decision.Proceed {
		o.log.Debug("subject skipped",
			slog.String("subject", subject.ID),
			slog.String("reason", string(decision.Skip)))
		if decision.Skip == policy.SkipCooldown {
			return outcomeCooldown
		}
		return outcomeSkipped
	}

	generated, err := o.chain.Generate(ctx, message.Input{
		DisplayName: subject.DisplayName,
		Signals:     decision.Signals,
		RiskScore:   decision.RiskScore,
		HasCritical: decision.HasCritical,
	})
	if err != nil {
		// Unreachable with the template tier in place, but a misassembled
		// chain must not bring the subject down silently.
		return o.fail(subject.ID, "generate message", err)
	}

	rec := &model.InterventionRecord{
		ID:               uuid.NewString(),
		SubjectID:        subject.ID,
		TriggerType:      decision.TriggerType,
		RiskScore:        decision.RiskScore,
		Message:          generated.Text,
		SuggestedActions: message.SuggestedActions(decision.Signals),
		ModelUsed:        generated.ModelUsed,
		CreatedAt:        o.now().UTC(),
	}

	deliveryErr := o.deliver(ctx, rec)
	rec.Delivered = deliveryErr == nil

	// The decision is persisted whatever happened on the wire: the UI
	// shows the intervention in-app even when the push never landed.
	if err := o.interventions.Create(ctx, rec); err != nil {
		return o.fail(subject.ID, "persist intervention", err)
	}

	signalTypes := make([]string, len(decision.Signals))
	for i, s := range decision.Signals {
		signalTypes[i] = string(s.Type)
	}
	o.log.Info("intervention dispatched",
		slog.String("subject", subject.ID),
		slog.String("trigger", rec.TriggerType),
		slog.Float64("risk_score", rec.RiskScore),
		slog.Any("signals", signalTypes),
		slog.String("model_used", rec.ModelUsed),
		slog.Bool("delivered", rec.Delivered),
		slog.Duration("elapsed", o.now().Sub(start)))

	switch {
	case deliveryErr == nil:
		return outcomeNotified
	case errors.Is(deliveryErr, webpush.ErrSubscriptionExpired):
		if err := o.subs.DeleteBySubject(ctx, subject.ID); err != nil {
			return o.fail(subject.ID, "delete expired subscription", err)
		}
		o.log.Info("subscription expired and removed", slog.String("subject", subject.ID))
		return outcomeExpired
	default:
		return o.fail(subject.ID, "deliver push", deliveryErr)
	}
}

func (o *Orchestrator) deliver(ctx context.Context, rec *model.InterventionRecord) error {
	sub, err := o.subs.GetBySubject(ctx, rec.SubjectID)
	if err != nil {
		return fmt.Errorf("load subscription: %w", err)
	}
	if sub == nil {
		return fmt.Errorf("subject %s has no subscription", rec.SubjectID)
	}

	payload, err := json.Marshal(webpush.Payload{
		Title: notificationTitle(rec.TriggerType),
		Body:  rec.Message,
		URL:   "/coach",
		Tag:   "proactive-intervention",
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	record, err := webpush.Encrypt(payload, sub.P256dhKey, sub.AuthKey)
	if err != nil {
		return fmt.Errorf("encrypt payload: %w", err)
	}

	authorization, err := o.keys.AuthorizationHeader(sub.Endpoint, o.now())
	if err != nil {
		return fmt.Errorf("build VAPID header: %w", err)
	}

	return o.push.Send(ctx, sub.Endpoint, record, authorization)
}

// fail logs and classifies a subject-level error. A timeout means the
// subject was abandoned, which counts as skipped, not failed.
func (o *Orchestrator) fail(subjectID, step string, err error) outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		o.log.Warn("subject abandoned on timeout",
			slog.String("subject", subjectID),
			slog.String("step", step))
		return outcomeSkipped
	}
	o.log.Error("subject pipeline failed",
		slog.String("subject", subjectID),
		slog.String("step", step),
		slog.String("error", err.Error()))
	return outcomeFailed
}

func notificationTitle(triggerType string) string {
	if triggerType == model.TriggerCriticalOutreach {
		return "We're here for you"
	}
	return "Checking in"
}

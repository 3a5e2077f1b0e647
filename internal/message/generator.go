package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harborlight/harborlight/internal/model"
	"github.com/harborlight/harborlight/internal/risk"
)

// Input is everything a generation tier may use. All tiers see the same
// input; the LLM tiers derive the same prompt from it, the template
// tier only reads the display name and urgency.
type Input struct {
	DisplayName string
	Signals     []risk.Signal
	RiskScore   float64
	HasCritical bool
}

// Prompt is the system/user instruction pair sent to the LLM tiers.
type Prompt struct {
	System string
	User   string
}

// Generator is one tier of the fallback chain. Name identifies the
// model in the persisted intervention record.
type Generator interface {
	Name() string
	Generate(ctx context.Context, in Input) (string, error)
}

// Result is the chain's output: the message text and which tier
// produced it.
type Result struct {
	Text      string
	ModelUsed string
}

// Chain tries each tier in order and returns the first success. The
// final tier is expected to be the template generator, which cannot
// fail, so generation as a whole never stalls the pipeline.
type Chain struct {
	tiers []Generator
	log   *slog.Logger
}

func NewChain(log *slog.Logger, tiers ...Generator) *Chain {
	return &Chain{tiers: tiers, log: log}
}

// Generate walks the tiers in order. Tier failures are logged and
// swallowed; an error comes back only if every tier fails, which a
// correctly assembled chain cannot do.
func (c *Chain) Generate(ctx context.Context, in Input) (Result, error) {
	var lastErr error
	for _, tier := range c.tiers {
		text, err := tier.Generate(ctx, in)
		if err != nil {
			lastErr = err
			c.log.Warn("generation tier failed, falling through",
				slog.String("tier", tier.Name()),
				slog.String("error", err.Error()))
			continue
		}
		return Result{Text: text, ModelUsed: tier.Name()}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("message: chain has no tiers")
	}
	return Result{}, fmt.Errorf("message: all generation tiers failed: %w", lastErr)
}

const systemPrompt = "You are a warm, supportive recovery coach. Write one short push " +
	"notification (at most two sentences) encouraging the person to re-engage with " +
	"their recovery routine. Be specific to their situation, never clinical, never " +
	"guilt-inducing. Do not mention risk scores or monitoring."

var promptContexts = map[risk.SignalType]string{
	risk.SignalMissedCheckIns:   "They have not checked in for a couple of days.",
	risk.SignalChatInactivity:   "They have not talked to their coach recently.",
	risk.SignalDecliningMood:    "Their mood has been low across their last few check-ins.",
	risk.SignalHighUrges:        "They have been reporting strong urges this week.",
	risk.SignalHighStress:       "Their stress readings have been elevated this week.",
	risk.SignalPoorSleep:        "They have been sleeping poorly this week.",
	risk.SignalRecentRelapse:    "They reported a relapse within the last month.",
	risk.SignalMultipleRelapses: "They have relapsed more than once in recent months.",
	risk.SignalJournalDecline:   "Their recent journal entries have been negative in tone.",
}

// BuildPrompt derives the shared LLM prompt from the dominant signal,
// with an extra-compassion clause for high-risk situations.
func BuildPrompt(in Input) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "The person's first name is %s. ", in.DisplayName)
	if dominant, ok := risk.Dominant(in.Signals); ok {
		if ctx, found := promptContexts[dominant.Type]; found {
			b.WriteString(ctx)
			b.WriteString(" ")
		}
	}
	if in.HasCritical || in.RiskScore >= 0.7 {
		b.WriteString("This is a vulnerable moment for them; be extra gentle and remind them support is one tap away.")
	} else {
		b.WriteString("Keep the tone light and encouraging.")
	}
	return Prompt{System: systemPrompt, User: strings.TrimSpace(b.String())}
}

var actionsByType = map[risk.SignalType][]string{
	risk.SignalHighUrges:        {model.ActionUseCopingTool},
	risk.SignalDecliningMood:    {model.ActionTalkToCoach},
	risk.SignalHighStress:       {model.ActionTalkToCoach},
	risk.SignalChatInactivity:   {model.ActionTalkToCoach},
	risk.SignalMissedCheckIns:   {model.ActionDoCheckIn},
	risk.SignalRecentRelapse:    {model.ActionTalkToCoach, model.ActionReviewTrigger},
	risk.SignalMultipleRelapses: {model.ActionTalkToCoach, model.ActionReviewTrigger},
}

// SuggestedActions maps triggered signals to quick-action tags,
// deduplicated in signal order. Falls back to a generic pair when no
// triggered signal maps to an action.
func SuggestedActions(signals []risk.Signal) []string {
	var actions []string
	seen := make(map[string]bool)
	for _, s := range signals {
		for _, a := range actionsByType[s.Type] {
			if !seen[a] {
				seen[a] = true
				actions = append(actions, a)
			}
		}
	}
	if len(actions) == 0 {
		return []string{model.ActionDoCheckIn, model.ActionTalkToCoach}
	}
	return actions
}

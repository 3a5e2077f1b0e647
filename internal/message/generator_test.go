package message

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlight/harborlight/internal/model"
	"github.com/harborlight/harborlight/internal/risk"
)

type stubTier struct {
	name string
	text string
	err  error
}

func (s stubTier) Name() string { return s.name }

func (s stubTier) Generate(context.Context, Input) (string, error) {
	return s.text, s.err
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestChainFirstTierWins(t *testing.T) {
	chain := NewChain(discard(),
		stubTier{name: "tier-1", text: "from tier one"},
		stubTier{name: "tier-2", text: "from tier two"},
	)

	res, err := chain.Generate(context.Background(), Input{DisplayName: "Sam"})
	require.NoError(t, err)
	assert.Equal(t, "from tier one", res.Text)
	assert.Equal(t, "tier-1", res.ModelUsed)
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	chain := NewChain(discard(),
		stubTier{name: "tier-1", err: errors.New("provider down")},
		stubTier{name: "tier-2", text: "from tier two"},
	)

	res, err := chain.Generate(context.Background(), Input{DisplayName: "Sam"})
	require.NoError(t, err)
	assert.Equal(t, "from tier two", res.Text)
	assert.Equal(t, "tier-2", res.ModelUsed)
}

func TestChainTemplateNeverFails(t *testing.T) {
	chain := NewChain(discard(),
		stubTier{name: "tier-1", err: errors.New("provider down")},
		stubTier{name: "tier-2", err: errors.New("also down")},
		TemplateGenerator{},
	)

	res, err := chain.Generate(context.Background(), Input{DisplayName: "Sam"})
	require.NoError(t, err)
	assert.Equal(t, "template", res.ModelUsed)
	assert.Contains(t, res.Text, "Sam")
}

func TestChainAllTiersFail(t *testing.T) {
	chain := NewChain(discard(),
		stubTier{name: "tier-1", err: errors.New("provider down")},
	)

	_, err := chain.Generate(context.Background(), Input{})
	assert.Error(t, err)
}

func TestTemplateGenerator(t *testing.T) {
	text, err := TemplateGenerator{}.Generate(context.Background(), Input{DisplayName: "Riley"})
	require.NoError(t, err)
	assert.Contains(t, text, "Riley")

	urgent, err := TemplateGenerator{}.Generate(context.Background(), Input{DisplayName: "Riley", HasCritical: true})
	require.NoError(t, err)
	assert.NotEqual(t, text, urgent)

	anon, err := TemplateGenerator{}.Generate(context.Background(), Input{})
	require.NoError(t, err)
	assert.Contains(t, anon, "there")
}

func TestBuildPrompt(t *testing.T) {
	in := Input{
		DisplayName: "Sam",
		Signals: []risk.Signal{
			{Type: risk.SignalHighUrges, Severity: risk.SeverityHigh, Weight: 0.35},
			{Type: risk.SignalChatInactivity, Severity: risk.SeverityLow, Weight: 0.25},
		},
		RiskScore: 0.6,
	}

	p := BuildPrompt(in)
	assert.NotEmpty(t, p.System)
	assert.Contains(t, p.User, "Sam")
	assert.Contains(t, p.User, promptContexts[risk.SignalHighUrges], "dominant signal sets the context")
	assert.NotContains(t, p.User, "vulnerable moment")

	in.RiskScore = 0.8
	assert.Contains(t, BuildPrompt(in).User, "vulnerable moment")

	in.RiskScore = 0.5
	in.HasCritical = true
	assert.Contains(t, BuildPrompt(in).User, "vulnerable moment")
}

func TestSuggestedActions(t *testing.T) {
	urges := SuggestedActions([]risk.Signal{{Type: risk.SignalHighUrges}})
	assert.Equal(t, []string{model.ActionUseCopingTool}, urges)

	relapse := SuggestedActions([]risk.Signal{
		{Type: risk.SignalRecentRelapse},
		{Type: risk.SignalMultipleRelapses},
		{Type: risk.SignalDecliningMood},
	})
	assert.Equal(t, []string{model.ActionTalkToCoach, model.ActionReviewTrigger}, relapse,
		"duplicates collapse in signal order")

	unmapped := SuggestedActions([]risk.Signal{{Type: risk.SignalPoorSleep}})
	assert.Equal(t, []string{model.ActionDoCheckIn, model.ActionTalkToCoach}, unmapped,
		"generic pair when no signal maps to an action")

	assert.Equal(t, []string{model.ActionDoCheckIn, model.ActionTalkToCoach}, SuggestedActions(nil))
}

func TestPromptContextsCoverAllSignalTypes(t *testing.T) {
	for _, st := range []risk.SignalType{
		risk.SignalMissedCheckIns, risk.SignalChatInactivity, risk.SignalDecliningMood,
		risk.SignalHighUrges, risk.SignalHighStress, risk.SignalPoorSleep,
		risk.SignalRecentRelapse, risk.SignalMultipleRelapses, risk.SignalJournalDecline,
	} {
		ctx, ok := promptContexts[st]
		assert.True(t, ok, "missing prompt context for %s", st)
		assert.False(t, strings.TrimSpace(ctx) == "", "blank prompt context for %s", st)
	}
}

package risk

// Severity classifies how urgent a single signal is on its own.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SignalType is the closed set of behavioral indicators the collector
// can emit. Each type has a fixed severity and weight; a subject either
// triggers a signal or doesn't.
type SignalType string

const (
	SignalMissedCheckIns   SignalType = "missed_check_ins"
	SignalChatInactivity   SignalType = "chat_inactivity"
	SignalDecliningMood    SignalType = "declining_mood"
	SignalHighUrges        SignalType = "high_urges"
	SignalHighStress       SignalType = "high_stress"
	SignalPoorSleep        SignalType = "poor_sleep"
	SignalRecentRelapse    SignalType = "recent_relapse"
	SignalMultipleRelapses SignalType = "multiple_relapses"
	SignalJournalDecline   SignalType = "journal_sentiment_decline"
)

// Signal is one independently computed indicator that a subject may
// need proactive support. Weight is in (0,1].
type Signal struct {
	Type        SignalType `json:"type"`
	Severity    Severity   `json:"severity"`
	Description string     `json:"description"`
	Weight      float64    `json:"weight"`
}

type signalDef struct {
	severity    Severity
	weight      float64
	description string
}

var signalDefs = map[SignalType]signalDef{
	SignalMissedCheckIns:   {SeverityMedium, 0.30, "No check-ins in the last 2 days"},
	SignalChatInactivity:   {SeverityLow, 0.25, "No coach conversation in the last 3 days"},
	SignalDecliningMood:    {SeverityHigh, 0.30, "Mood has averaged 2 or lower across the last 3 check-ins"},
	SignalHighUrges:        {SeverityHigh, 0.35, "Urge intensity has averaged 7+ this week"},
	SignalHighStress:       {SeverityMedium, 0.20, "Stress readings have averaged 8+ this week"},
	SignalPoorSleep:        {SeverityLow, 0.15, "Sleep has averaged under 5 hours this week"},
	SignalRecentRelapse:    {SeverityHigh, 0.40, "A relapse was reported within the last 30 days"},
	SignalMultipleRelapses: {SeverityCritical, 0.50, "Two or more relapses within the last 90 days"},
	SignalJournalDecline:   {SeverityMedium, 0.25, "Recent journal entries trend negative"},
}

func newSignal(t SignalType) Signal {
	def := signalDefs[t]
	return Signal{Type: t, Severity: def.severity, Description: def.description, Weight: def.weight}
}

// Score sums triggered signal weights, clamped to 1.0.
func Score(signals []Signal) float64 {
	var sum float64
	for _, s := range signals {
		sum += s.Weight
	}
	if sum > 1 {
		return 1
	}
	return sum
}

// HasCritical reports whether any signal is critical severity.
func HasCritical(signals []Signal) bool {
	for _, s := range signals {
		if s.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Dominant returns the highest-weighted signal. Ties keep collection
// order. ok is false when no signals triggered.
func Dominant(signals []Signal) (dominant Signal, ok bool) {
	for _, s := range signals {
		if !ok || s.Weight > dominant.Weight {
			dominant, ok = s, true
		}
	}
	return dominant, ok
}

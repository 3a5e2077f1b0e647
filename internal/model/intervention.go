package model

import "time"

// Intervention trigger classifications.
const (
	TriggerCriticalOutreach    = "critical_outreach"
	TriggerHighPriorityCheckIn = "high_priority_check_in"
)

// Suggested action tags shown as quick actions under the notification.
const (
	ActionDoCheckIn     = "do_check_in"
	ActionTalkToCoach   = "talk_to_coach"
	ActionUseCopingTool = "use_coping_tool"
	ActionReviewTrigger = "review_triggers"
)

// InterventionRecord is the persisted outcome of one proactive-outreach
// decision. Created here; acknowledged and rated later by the app UI.
// WasHelpful stays nil until the subject rates the intervention.
type InterventionRecord struct {
	ID               string     `json:"id"`
	SubjectID        string     `json:"subject_id"`
	TriggerType      string     `json:"trigger_type"`
	RiskScore        float64    `json:"risk_score"`
	Message          string     `json:"message"`
	SuggestedActions []string   `json:"suggested_actions"`
	ModelUsed        string     `json:"model_used"`
	Delivered        bool       `json:"delivered"`
	CreatedAt        time.Time  `json:"created_at"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at,omitempty"`
	WasAcknowledged  bool       `json:"was_acknowledged"`
	WasHelpful       *bool      `json:"was_helpful,omitempty"`
}

package model

// Proactive notification frequency settings.
const (
	FrequencyLow    = "low"
	FrequencyMedium = "medium"
	FrequencyHigh   = "high"
)

// NotificationPreferences controls when a subject may be proactively
// contacted. Owned by the settings UI; read-only in this service.
type NotificationPreferences struct {
	SubjectID          string `json:"subject_id"`
	ProactiveEnabled   bool   `json:"proactive_enabled"`
	ProactiveFrequency string `json:"proactive_frequency"`
	QuietHoursEnabled  bool   `json:"quiet_hours_enabled"`
	QuietHoursStart    int    `json:"quiet_hours_start"`
	QuietHoursEnd      int    `json:"quiet_hours_end"`
	Timezone           string `json:"timezone"`
}

// DefaultPreferences are used when a subject has never opened the
// notification settings screen.
func DefaultPreferences(subjectID string) NotificationPreferences {
	return NotificationPreferences{
		SubjectID:          subjectID,
		ProactiveEnabled:   true,
		ProactiveFrequency: FrequencyMedium,
		QuietHoursEnabled:  true,
		QuietHoursStart:    22,
		QuietHoursEnd:      8,
		Timezone:           "UTC",
	}
}

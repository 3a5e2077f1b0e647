package model

import "time"

// Journal sentiment labels, assigned by the journaling surface when an
// entry is saved.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// CheckIn is a daily self-report. MoodScore is 1-5, UrgeIntensity 0-10.
type CheckIn struct {
	ID            int64     `json:"id"`
	SubjectID     string    `json:"subject_id"`
	MoodScore     int       `json:"mood_score"`
	UrgeIntensity int       `json:"urge_intensity"`
	CreatedAt     time.Time `json:"created_at"`
}

// BiometricLog is a wearable or manual health reading. StressLevel is
// 0-10, SleepHours is the previous night's total.
type BiometricLog struct {
	ID          int64     `json:"id"`
	SubjectID   string    `json:"subject_id"`
	StressLevel int       `json:"stress_level"`
	SleepHours  float64   `json:"sleep_hours"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// RelapseEvent records a self-reported relapse.
type RelapseEvent struct {
	ID         int64     `json:"id"`
	SubjectID  string    `json:"subject_id"`
	Notes      string    `json:"notes"`
	OccurredAt time.Time `json:"occurred_at"`
}

// JournalEntry carries only the sentiment label here; the entry body
// stays with the journaling surface.
type JournalEntry struct {
	ID        int64     `json:"id"`
	SubjectID string    `json:"subject_id"`
	Sentiment string    `json:"sentiment"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is one turn in the coach conversation. Role is "user" or
// "assistant"; only user turns count as activity.
type ChatMessage struct {
	ID        int64     `json:"id"`
	SubjectID string    `json:"subject_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

package model

import "time"

// PushSubscription is a subject's Web Push registration. One subscription
// per subject; re-registering replaces the previous endpoint.
type PushSubscription struct {
	ID        int64     `json:"id"`
	SubjectID string    `json:"subject_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}

// Subject is the owner of check-ins, journals, and subscriptions.
type Subject struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

package entity

import "time"

// Contact is a participant identity as the messaging core sees it. Contacts
// are created when a participant is first observed and never deleted; a
// contact that stops heartbeating just goes stale.
type Contact struct {
	ID          string    `json:"id" firestore:"id"`
	DisplayName string    `json:"display_name" firestore:"displayName"`
	AvatarURL   string    `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`
	Online      bool      `json:"online" firestore:"online"`
	LastSeen    time.Time `json:"last_seen" firestore:"lastSeen"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

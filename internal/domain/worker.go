package domain

import "time"

// Worker belongs to exactly one office.
type Worker struct {
	ID        string    `json:"id"`
	OfficeID  string    `json:"office_id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

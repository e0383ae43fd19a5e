package domain

import "time"

// DefaultOfficeColor is applied when an office is created without a color.
const DefaultOfficeColor = "#3B82F6"

// Office is a physical location owned by a single user.
type Office struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	Color     string    `json:"color"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

package client

import "time"

// Credentials is the sign-in and sign-up payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User reflects API user payloads.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Tokens carries the bearer token issued at sign-in.
type Tokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Session is returned by sign-up and sign-in.
type Session struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

// Office mirrors the API office payload.
type Office struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	Color     string    `json:"color"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OfficeInput is the office creation payload.
type OfficeInput struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
	Color    string `json:"color,omitempty"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// Worker mirrors the API worker payload. Avatar is always set.
type Worker struct {
	ID        string    `json:"id"`
	OfficeID  string    `json:"office_id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkerInput is the worker create and update payload.
type WorkerInput struct {
	Name      string `json:"name"`
	Position  string `json:"position"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// OfficeSummary is one dashboard card.
type OfficeSummary struct {
	Office      Office `json:"office"`
	WorkerCount int    `json:"worker_count"`
	Occupancy   int    `json:"occupancy"`
}

// Summary is the dashboard overview.
type Summary struct {
	Offices       []OfficeSummary `json:"offices"`
	TotalOffices  int             `json:"total_offices"`
	TotalWorkers  int             `json:"total_workers"`
	TotalCapacity int             `json:"total_capacity"`
	OccupancyRate int             `json:"occupancy_rate"`
}

// Session event types.
const (
	EventSignedIn  = "SIGNED_IN"
	EventSignedOut = "SIGNED_OUT"
)

// SessionEvent is delivered by WatchSession.
type SessionEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

package models

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
	RoleViewer    UserRole = "viewer"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ModeratorAssignment grants a moderator the right to update fixtures of a
// sport. A nil VenueID means the assignment covers every venue.
type ModeratorAssignment struct {
	UserID  int  `json:"user_id" db:"user_id"`
	SportID int  `json:"sport_id" db:"sport_id"`
	VenueID *int `json:"venue_id,omitempty" db:"venue_id"`
}

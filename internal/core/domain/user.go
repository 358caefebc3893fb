package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DefaultBoardTitle is the board every account starts with.
const DefaultBoardTitle = "Default"

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package models

import "time"

// User is a registered account. Usernames are case-sensitive identity keys.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

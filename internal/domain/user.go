package domain

import (
	devlink "github.com/devlink-app/devlink"
)

// User represents a registered account. Field names mirror the persisted
// document schema and must not change; forms and cards elsewhere in the
// system write these same fields.
type User struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	PasswordHash   string          `json:"passwordHash,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	ProfilePicture string          `json:"profilePicture,omitempty"`
	CreatedAt      devlink.Instant `json:"createdAt"`
}

// Public strips credential material for responses.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// DisplayName picks the best available name for rendering.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Profile is the resolved identity attached to feed entries and comments.
type Profile struct {
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

package domain

import "time"

// User is the profile upserted on every sign-in. The document id is the identity provider uid.
type User struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// Identity is what a verified bearer credential yields
type Identity struct {
	UID   string
	Email string
}

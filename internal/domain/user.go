// internal/domain/user.go
package domain

import "time"

// User represents an account holder in the wallet system.
type User struct {
	ID                int64     `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	Email             string    `db:"email" json:"email"`           // Unique, used to address transfers
	Name              string    `db:"name" json:"name"`             // Display name
	PasswordHash      string    `db:"password_hash" json:"-"`       // bcrypt hash, never serialized
	Verified          bool      `db:"verified" json:"verified"`     // Email verification flag
	VerificationToken *string   `db:"verification_token" json:"-"`  // Pending verification token, nil once verified
	CreatedAt         time.Time `db:"created_at" json:"created_at"` // Timestamp of registration
}

// NewUser creates a new, unverified User instance.
func NewUser(email, name, passwordHash string, verificationToken string) *User {
	return &User{
		Email:             email,
		Name:              name,
		PasswordHash:      passwordHash,
		Verified:          false,
		VerificationToken: &verificationToken,
		CreatedAt:         time.Now().UTC(),
	}
}

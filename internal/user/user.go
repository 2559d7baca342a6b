package user

import "time"

// Account maps to the `accounts` table. Accounts are never linked to carts.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	FullName     string    `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MinPasswordLength matches the hosted auth provider's default.
const MinPasswordLength = 6

// TokenTTL is how long a sign-in token stays valid.
const TokenTTL = 72 * time.Hour

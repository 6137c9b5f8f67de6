package model

import "time"

// EmailVerification stores the SHA-256 digest of the verification token,
// never the clear token. At most one active record exists per email.
type EmailVerification struct {
	Email     string
	TokenHash string
	Code      string
	ExpiresAt time.Time
}

type PasswordReset struct {
	Email     string
	TokenHash string
	ExpiresAt time.Time
}

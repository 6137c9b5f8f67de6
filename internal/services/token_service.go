package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// NewVerificationToken returns the opaque token embedded in verification
// links. Only its digest is ever persisted.
func NewVerificationToken() string {
	return uuid.NewString()
}

// NewResetToken returns a 256-bit hex token for password-recovery links.
func NewResetToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err) // entropy source exhaustion is unrecoverable
	}
	return hex.EncodeToString(b)
}

// NewNumericCode returns a 6-digit code uniform over [100000, 999999].
func NewNumericCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// HashToken is the stored form of every token: hex SHA-256. Deterministic,
// so records are looked up by digest equality.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

package services

import (
	"context"
	"net/mail"
)

type EmailValidator interface {
	Validate(ctx context.Context, email string) error
}

// LocalValidator accepts any syntactically valid address. The external
// reputation validator replaces it when enabled.
type LocalValidator struct{}

func NewLocalValidator() *LocalValidator {
	return &LocalValidator{}
}

func (v *LocalValidator) Validate(ctx context.Context, email string) error {
	_, err := mail.ParseAddress(email)
	return err
}

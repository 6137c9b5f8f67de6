package services

import "context"

// EmailSender is the outbound-mail collaborator. Dispatch happens only
// after the matching token record is durably upserted; a transport
// failure is surfaced to the caller but never rolls the record back.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, toEmail, verifyURL, code string) error
	SendPasswordRecoveryEmail(ctx context.Context, toEmail, resetURL string) error
}

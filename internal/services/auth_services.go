package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/clementdevtech/general-hardware/internal/model"
	"github.com/clementdevtech/general-hardware/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen = 6

	verificationTTL = 10 * time.Minute
	resetTTL        = 10 * time.Minute
)

var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	ErrEmailRejected    = errors.New("email address rejected")

	// ErrAlreadyExists deliberately does not say which field collided.
	ErrAlreadyExists = errors.New("email or username already exists")

	// ErrInvalidOrExpired covers wrong, expired and absent tokens alike.
	ErrInvalidOrExpired = errors.New("invalid or expired token")

	ErrNoPendingUser   = errors.New("no pending user found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmailSend       = errors.New("email failed to send")
	ErrThrottled       = errors.New("too many requests, try again later")
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	PromotePending(ctx context.Context, email, tokenHash, code string) (*model.User, error)
}

type PendingUserStore interface {
	Create(ctx context.Context, p *model.PendingUser) error
	FindByEmailOrUsername(ctx context.Context, email, username string) (*model.PendingUser, error)
}

type VerificationStore interface {
	Upsert(ctx context.Context, email, tokenHash, code string, expiresAt time.Time) error
}

type PasswordResetStore interface {
	Upsert(ctx context.Context, email, tokenHash string, expiresAt time.Time) error
	Consume(ctx context.Context, tokenHash string) (string, error)
}

// SendLimiter throttles outbound mail per address. A limiter failure is
// treated as fail-open: losing throttling beats losing signups.
type SendLimiter interface {
	Allow(ctx context.Context, email, purpose string) (bool, error)
}

type AuthService struct {
	Users         UserStore
	Pending       PendingUserStore
	Verifications VerificationStore
	Resets        PasswordResetStore
	Validator     EmailValidator
	Mailer        EmailSender
	Limiter       SendLimiter
	ClientURL     string
	Log           *zap.SugaredLogger
}

func NewAuthService(
	users UserStore,
	pending PendingUserStore,
	verifications VerificationStore,
	resets PasswordResetStore,
	validator EmailValidator,
	mailer EmailSender,
	limiter SendLimiter,
	clientURL string,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		Users:         users,
		Pending:       pending,
		Verifications: verifications,
		Resets:        resets,
		Validator:     validator,
		Mailer:        mailer,
		Limiter:       limiter,
		ClientURL:     clientURL,
		Log:           log,
	}
}

type Availability struct {
	EmailTaken    bool
	UsernameTaken bool
}

func (a Availability) Taken() bool {
	return a.EmailTaken || a.UsernameTaken
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckAvailability reports whether email or username is held by an
// account or an unexpired pending registration. Side-effect-free.
func (s *AuthService) CheckAvailability(ctx context.Context, email, username string) (Availability, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" {
		return Availability{}, ErrMissingFields
	}

	var av Availability
	u, err := s.Users.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		av.EmailTaken = av.EmailTaken || u.Email == email
		av.UsernameTaken = av.UsernameTaken || u.Username == username
	case !errors.Is(err, repository.ErrNotFound):
		return Availability{}, err
	}

	p, err := s.Pending.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		av.EmailTaken = av.EmailTaken || p.Email == email
		av.UsernameTaken = av.UsernameTaken || p.Username == username
	case !errors.Is(err, repository.ErrNotFound):
		return Availability{}, err
	}

	return av, nil
}

// Register creates a pending registration and dispatches the verification
// email. The pre-checks against both stores are an early exit only; the
// unique indexes reject duplicates that race past them. A mail dispatch
// failure keeps the pending row so the user can request a resend.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*model.PendingUser, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(password) < MinPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if s.Validator != nil {
		if err := s.Validator.Validate(ctx, email); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmailRejected, err)
		}
	}

	if _, err := s.Users.FindByEmailOrUsername(ctx, email, username); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.Pending.FindByEmailOrUsername(ctx, email, username); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &model.PendingUser{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.Pending.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	if err := s.issueVerification(ctx, email); err != nil {
		return nil, err
	}
	return p, nil
}

// SendVerificationCode reissues the verification email for an outstanding
// pending registration, replacing any previous token and code.
func (s *AuthService) SendVerificationCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingFields
	}
	if _, err := s.Pending.FindByEmailOrUsername(ctx, email, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoPendingUser
		}
		return err
	}
	if err := s.allowSend(ctx, email, "verify"); err != nil {
		return err
	}
	return s.issueVerification(ctx, email)
}

func (s *AuthService) issueVerification(ctx context.Context, email string) error {
	token := NewVerificationToken()
	code := NewNumericCode()
	if err := s.Verifications.Upsert(ctx, email, HashToken(token), code, time.Now().Add(verificationTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/email-verification?token=%s&email=%s",
		s.ClientURL, token, url.QueryEscape(email))
	if err := s.Mailer.SendVerificationEmail(ctx, email, link, code); err != nil {
		s.Log.Errorw("verification email dispatch failed", "email", email, "error", err)
		return ErrEmailSend
	}
	return nil
}

// VerifyEmail consumes the verification record and promotes the pending
// registration into an account, atomically. A repeated call finds nothing
// to consume and fails with ErrInvalidOrExpired.
func (s *AuthService) VerifyEmail(ctx context.Context, email, token, code string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || (token == "" && code == "") {
		return nil, ErrMissingFields
	}

	tokenHash := ""
	if token != "" {
		tokenHash = HashToken(token)
	}

	u, err := s.Users.PromotePending(ctx, email, tokenHash, code)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVerificationNotFound):
			return nil, ErrInvalidOrExpired
		case errors.Is(err, repository.ErrNoPendingUser):
			return nil, ErrNoPendingUser
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}
	u.PasswordHash = ""
	return u, nil
}

// ForgotPassword issues a reset token for an existing account and mails
// the recovery link. The clear token only ever travels in the link; the
// store holds its digest.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingFields
	}

	if _, err := s.Users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.allowSend(ctx, email, "reset"); err != nil {
		return err
	}

	token := NewResetToken()
	if err := s.Resets.Upsert(ctx, email, HashToken(token), time.Now().Add(resetTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.ClientURL, token)
	if err := s.Mailer.SendPasswordRecoveryEmail(ctx, email, link); err != nil {
		s.Log.Errorw("recovery email dispatch failed", "email", email, "error", err)
		return ErrEmailSend
	}
	return nil
}

// ResetPassword consumes the reset record matching the token's digest and
// overwrites the account's password. Consumption is a conditional delete,
// so a token can never succeed twice.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return ErrMissingFields
	}
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}

	email, err := s.Resets.Consume(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOrExpired
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, email, string(hash)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *AuthService) allowSend(ctx context.Context, email, purpose string) error {
	if s.Limiter == nil {
		return nil
	}
	allowed, err := s.Limiter.Allow(ctx, email, purpose)
	if err != nil {
		s.Log.Warnw("send limiter unavailable, allowing", "purpose", purpose, "error", err)
		return nil
	}
	if !allowed {
		return ErrThrottled
	}
	return nil
}

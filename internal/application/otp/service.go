package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tradedash-api/internal/domain"
	pkgtoken "github.com/tradedash-api/internal/pkg/token"
)

type verificationStore interface {
	Put(ctx context.Context, v *domain.PendingVerification) error
	Get(ctx context.Context, email string) (*domain.PendingVerification, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

// Service issues one-time passcodes for signup verification.
type Service interface {
	// Request generates a fresh code for email, stores it (overwriting any
	// prior pending entry, which invalidates it) and dispatches it by mail.
	// The code is returned so the transport layer can echo it when the dev
	// flag is on; it must never reach a production response.
	Request(ctx context.Context, email string) (string, error)
}

type Config struct {
	Length      int
	TTL         time.Duration
	MinInterval time.Duration
}

type service struct {
	verifications verificationStore
	mailer        mailer
	cfg           Config
	now           func() time.Time
}

func NewService(verifications verificationStore, m mailer, cfg Config) Service {
	return &service{verifications: verifications, mailer: m, cfg: cfg, now: time.Now}
}

func (s *service) Request(ctx context.Context, email string) (string, error) {
	now := s.now().UTC()

	// Per-email throttle: a live entry younger than MinInterval blocks a
	// re-request regardless of the caller's IP.
	prior, err := s.verifications.Get(ctx, email)
	switch {
	case err == nil:
		if now.Sub(prior.CreatedAt) < s.cfg.MinInterval {
			return "", fmt.Errorf("OTP requested too recently: %w", domain.ErrRateLimited)
		}
	case errors.Is(err, domain.ErrNotFound):
		// first request for this email
	default:
		return "", err
	}

	code, err := pkgtoken.NewNumericCode(s.cfg.Length)
	if err != nil {
		return "", err
	}
	v := &domain.PendingVerification{
		Email:     email,
		Code:      code,
		Attempts:  0,
		ExpiresAt: now.Add(s.cfg.TTL).Unix(),
		CreatedAt: now,
	}
	if err := s.verifications.Put(ctx, v); err != nil {
		return "", err
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.cfg.TTL.Minutes()))
	if err := s.mailer.SendEmail(email, "Your verification code", body); err != nil {
		return "", fmt.Errorf("send OTP email: %w", err)
	}
	return code, nil
}

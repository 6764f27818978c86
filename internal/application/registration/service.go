package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradedash-api/internal/domain"
	"github.com/tradedash-api/internal/pkg/id"
	"github.com/tradedash-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type verificationStore interface {
	Get(ctx context.Context, email string) (*domain.PendingVerification, error)
	Delete(ctx context.Context, email string) error
	IncrementAttempts(ctx context.Context, email string) (int, error)
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

type portfolioStore interface {
	Put(ctx context.Context, p *domain.Portfolio) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type eventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// VerifyRequest is the /auth/verify-otp body. UserData is excluded from
// transport-layer validation: the OTP must be checked against the pending
// verification before anything about the profile is judged, so profile
// validation belongs to VerifyAndRegister.
type VerifyRequest struct {
	Email    string         `json:"email" validate:"required,email"`
	OTP      string         `json:"otp" validate:"required"`
	UserData domain.Profile `json:"userData" validate:"-"`
}

// Service verifies a submitted OTP and atomically creates the account.
type Service interface {
	VerifyAndRegister(ctx context.Context, req VerifyRequest) (*domain.Account, error)
}

type Config struct {
	MaxAttempts      int
	DemoStartingCash float64
}

type Deps struct {
	Verifications verificationStore
	Accounts      accountStore
	Portfolios    portfolioStore
	Notifications notificationStore
	Events        eventPublisher // may be nil; publishing is best-effort
}

type service struct {
	verifications verificationStore
	accounts      accountStore
	portfolios    portfolioStore
	notifications notificationStore
	events        eventPublisher
	cfg           Config
}

func NewService(deps Deps, cfg Config) Service {
	return &service{
		verifications: deps.Verifications,
		accounts:      deps.Accounts,
		portfolios:    deps.Portfolios,
		notifications: deps.Notifications,
		events:        deps.Events,
		cfg:           cfg,
	}
}

func (s *service) VerifyAndRegister(ctx context.Context, req VerifyRequest) (*domain.Account, error) {
	v, err := s.verifications.Get(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if v.Expired(time.Now()) {
		return nil, fmt.Errorf("OTP expired: %w", domain.ErrExpired)
	}
	if v.Code != req.OTP {
		attempts, incErr := s.verifications.IncrementAttempts(ctx, req.Email)
		if incErr != nil {
			slog.Warn("failed to record OTP attempt", "email", req.Email, "err", incErr)
		}
		if incErr == nil && attempts >= s.cfg.MaxAttempts {
			// Exhausted — burn the code so it can never be guessed through.
			if delErr := s.verifications.Delete(ctx, req.Email); delErr != nil {
				slog.Warn("failed to delete exhausted verification", "email", req.Email, "err", delErr)
			}
		}
		return nil, fmt.Errorf("incorrect OTP: %w", domain.ErrMismatch)
	}

	if err := validate.Struct(&req.UserData); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidProfile)
	}
	if _, err := time.Parse("2006-01-02", req.UserData.DateOfBirth); err != nil {
		return nil, fmt.Errorf("dateOfBirth must be YYYY-MM-DD: %w", domain.ErrInvalidProfile)
	}

	// Usernames are unique across accounts. This check is a pre-flight, not
	// a guarantee; the email claim in Create is what stays atomic.
	if _, err := s.accounts.GetByUsername(ctx, req.UserData.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.UserData.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:    id.New(),
		Email:        req.Email,
		Username:     req.UserData.Username,
		PasswordHash: string(hash),
		FirstName:    req.UserData.FirstName,
		LastName:     req.UserData.LastName,
		Country:      req.UserData.Country,
		Currency:     req.UserData.Currency,
		AccountType:  req.UserData.AccountType,
		DateOfBirth:  req.UserData.DateOfBirth,
		Role:         domain.RoleUser,
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}

	// One-time use: the code is gone whether or not the cleanup below works.
	if err := s.verifications.Delete(ctx, req.Email); err != nil {
		slog.Warn("failed to delete verification after registration", "email", req.Email, "err", err)
	}

	s.seedPortfolio(ctx, a, now)
	s.welcome(ctx, a, now)

	if s.events != nil {
		if err := s.events.Publish(ctx, "account.created", map[string]string{
			"accountId":   a.AccountID,
			"email":       a.Email,
			"accountType": a.AccountType,
		}); err != nil {
			slog.Warn("failed to publish account.created", "account_id", a.AccountID, "err", err)
		}
	}
	return a, nil
}

// seedPortfolio creates the account's initial portfolio. Demo accounts start
// with play money; everything else starts at zero until a deposit clears.
func (s *service) seedPortfolio(ctx context.Context, a *domain.Account, now time.Time) {
	cash := 0.0
	if a.AccountType == domain.AccountTypeDemo {
		cash = s.cfg.DemoStartingCash
	}
	p := &domain.Portfolio{
		AccountID:   a.AccountID,
		Currency:    a.Currency,
		CashBalance: cash,
		Holdings:    []domain.Holding{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.portfolios.Put(ctx, p); err != nil {
		slog.Warn("failed to seed portfolio", "account_id", a.AccountID, "err", err)
	}
}

func (s *service) welcome(ctx context.Context, a *domain.Account, now time.Time) {
	n := &domain.Notification{
		NotificationID: id.New(),
		AccountID:      a.AccountID,
		Title:          "Welcome",
		Message:        fmt.Sprintf("Hi %s, your account is ready.", a.FirstName),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.notifications.Put(ctx, n); err != nil {
		slog.Warn("failed to create welcome notification", "account_id", a.AccountID, "err", err)
	}
}

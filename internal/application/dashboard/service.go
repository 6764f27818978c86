package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradedash-api/internal/domain"
)

const defaultHistoryLimit = 100

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

type portfolioStore interface {
	Get(ctx context.Context, accountID string) (*domain.Portfolio, error)
}

type transactionStore interface {
	ListByAccount(ctx context.Context, accountID string, limit int32) ([]domain.Transaction, error)
}

type notificationStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByAccount(ctx context.Context, accountID string, limit int32) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error)
}

// Service aggregates the per-account dashboard views. Every method takes the
// account identity resolved by the auth middleware; none touch accounts they
// were not handed.
type Service interface {
	User(ctx context.Context, accountID string) (*domain.Account, error)
	Portfolio(ctx context.Context, accountID string) (*domain.Portfolio, error)
	Stats(ctx context.Context, accountID string) (*domain.Stats, error)
	Transactions(ctx context.Context, accountID string) ([]domain.Transaction, error)
	Notifications(ctx context.Context, accountID string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, accountID string) (*domain.Notification, error)
}

type Deps struct {
	Accounts      accountStore
	Portfolios    portfolioStore
	Transactions  transactionStore
	Notifications notificationStore
}

type service struct {
	accounts      accountStore
	portfolios    portfolioStore
	transactions  transactionStore
	notifications notificationStore
}

func NewService(deps Deps) Service {
	return &service{
		accounts:      deps.Accounts,
		portfolios:    deps.Portfolios,
		transactions:  deps.Transactions,
		notifications: deps.Notifications,
	}
}

func (s *service) User(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.Get(ctx, accountID)
}

// Portfolio returns the account's portfolio. Accounts registered before the
// portfolio seed existed have no row; they get an empty portfolio rather
// than a 404.
func (s *service) Portfolio(ctx context.Context, accountID string) (*domain.Portfolio, error) {
	p, err := s.portfolios.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.Portfolio{AccountID: accountID, Holdings: []domain.Holding{}}, nil
		}
		return nil, err
	}
	return p, nil
}

func (s *service) Stats(ctx context.Context, accountID string) (*domain.Stats, error) {
	p, err := s.Portfolio(ctx, accountID)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions.ListByAccount(ctx, accountID, defaultHistoryLimit)
	if err != nil {
		return nil, err
	}

	var invested, cost float64
	for _, h := range p.Holdings {
		invested += h.MarketValue()
		cost += h.CostBasis()
	}
	st := &domain.Stats{
		Currency:         p.Currency,
		CashBalance:      p.CashBalance,
		InvestedValue:    invested,
		TotalValue:       p.CashBalance + invested,
		UnrealizedPL:     invested - cost,
		OpenPositions:    len(p.Holdings),
		TransactionCount: len(txs),
	}
	if cost > 0 {
		st.UnrealizedPLPct = (invested - cost) / cost * 100
	}
	return st, nil
}

func (s *service) Transactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	txs, err := s.transactions.ListByAccount(ctx, accountID, defaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, nil
}

func (s *service) Notifications(ctx context.Context, accountID string) ([]domain.Notification, error) {
	ns, err := s.notifications.ListByAccount(ctx, accountID, defaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	return ns, nil
}

func (s *service) MarkNotificationRead(ctx context.Context, notificationID, accountID string) (*domain.Notification, error) {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	// Someone else's notification reads as absent, not forbidden.
	if n.AccountID != accountID {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	return s.notifications.MarkAsRead(ctx, notificationID)
}

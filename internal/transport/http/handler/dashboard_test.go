package handler

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tradedash-api/internal/domain"
	jwtinfra "github.com/tradedash-api/internal/infrastructure/jwt"
	"github.com/tradedash-api/internal/transport/http/middleware"
)

type mockDashboardService struct{ mock.Mock }

func (m *mockDashboardService) User(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a := args.Get(0); a != nil {
		return a.(*domain.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDashboardService) Portfolio(ctx context.Context, accountID string) (*domain.Portfolio, error) {
	args := m.Called(ctx, accountID)
	if p := args.Get(0); p != nil {
		return p.(*domain.Portfolio), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDashboardService) Stats(ctx context.Context, accountID string) (*domain.Stats, error) {
	args := m.Called(ctx, accountID)
	if s := args.Get(0); s != nil {
		return s.(*domain.Stats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDashboardService) Transactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID)
	if txs := args.Get(0); txs != nil {
		return txs.([]domain.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDashboardService) Notifications(ctx context.Context, accountID string) ([]domain.Notification, error) {
	args := m.Called(ctx, accountID)
	if ns := args.Get(0); ns != nil {
		return ns.([]domain.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDashboardService) MarkNotificationRead(ctx context.Context, notificationID, accountID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID, accountID)
	if n := args.Get(0); n != nil {
		return n.(*domain.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

// newDashboardServer mounts the dashboard routes behind the auth middleware,
// the way the router does, and returns a signer for minting test tokens.
func newDashboardServer(t *testing.T, svc *mockDashboardService) (http.Handler, *jwtinfra.Provider) {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	provider := jwtinfra.NewProviderFromKeys(privKey, time.Hour)

	h := NewDashboardHandler(svc)
	r := chi.NewRouter()
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.Auth(provider))
		r.Get("/user", h.User)
		r.Get("/portfolio", h.Portfolio)
		r.Get("/stats", h.Stats)
		r.Get("/transactions", h.Transactions)
		r.Get("/notifications", h.Notifications)
		r.Put("/notifications/{id}", h.MarkNotificationRead)
	})
	return r, provider
}

func TestDashboard_MissingToken(t *testing.T) {
	svc := new(mockDashboardService)
	srv, _ := newDashboardServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/user", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertNotCalled(t, "User", mock.Anything, mock.Anything)
}

func TestDashboard_InvalidToken(t *testing.T) {
	svc := new(mockDashboardService)
	srv, _ := newDashboardServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/user", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertNotCalled(t, "User", mock.Anything, mock.Anything)
}

func TestDashboard_User(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("User", mock.Anything, "acc1").
		Return(&domain.Account{AccountID: "acc1", Email: "a@x.com", Username: "kait"}, nil)
	srv, provider := newDashboardServer(t, svc)

	token, err := provider.Sign("acc1", "a@x.com", "user", "sess1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "acc1", body["id"])
	assert.Equal(t, "kait", body["username"])
	svc.AssertExpectations(t)
}

func TestDashboard_Stats(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Stats", mock.Anything, "acc1").Return(&domain.Stats{
		Currency:      "EUR",
		TotalValue:    2900,
		CashBalance:   1000,
		InvestedValue: 1900,
		UnrealizedPL:  500,
	}, nil)
	srv, provider := newDashboardServer(t, svc)

	token, err := provider.Sign("acc1", "a@x.com", "user", "sess1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, 2900.0, body["totalValue"])
}

func TestDashboard_TransactionsEmpty(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Transactions", mock.Anything, "acc1").Return([]domain.Transaction{}, nil)
	srv, provider := newDashboardServer(t, svc)

	token, err := provider.Sign("acc1", "a@x.com", "user", "sess1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var txs []domain.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &txs))
	assert.Empty(t, txs)
}

func TestDashboard_MarkNotificationRead(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("MarkNotificationRead", mock.Anything, "n1", "acc1").
		Return(&domain.Notification{NotificationID: "n1", AccountID: "acc1", Read: true}, nil)
	srv, provider := newDashboardServer(t, svc)

	token, err := provider.Sign("acc1", "a@x.com", "user", "sess1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/dashboard/notifications/n1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, true, body["read"])
}

func TestDashboard_ForeignNotification(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("MarkNotificationRead", mock.Anything, "n9", "acc1").
		Return(nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound))
	srv, provider := newDashboardServer(t, svc)

	token, err := provider.Sign("acc1", "a@x.com", "user", "sess1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/dashboard/notifications/n9", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tradedash-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Get(ctx context.Context, email string) (*domain.PendingVerification, error) {
	args := m.Called(ctx, email)
	if v, _ := args.Get(0).(*domain.PendingVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationStore) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockVerificationStore) IncrementAttempts(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) Create(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAccountStore) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPortfolioStore struct{ mock.Mock }

func (m *mockPortfolioStore) Put(ctx context.Context, p *domain.Portfolio) error {
	return m.Called(ctx, p).Error(0)
}

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return m.Called(ctx, eventType, payload).Error(0)
}

// --- helpers ---

func newService(vs *mockVerificationStore, as *mockAccountStore, ps *mockPortfolioStore, ns *mockNotificationStore, ev *mockPublisher) Service {
	deps := Deps{Verifications: vs, Accounts: as, Portfolios: ps, Notifications: ns}
	if ev != nil {
		deps.Events = ev
	}
	return NewService(deps, Config{MaxAttempts: 5, DemoStartingCash: 100000})
}

func liveVerification(code string) *domain.PendingVerification {
	return &domain.PendingVerification{
		Email:     "a@x.com",
		Code:      code,
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		CreatedAt: time.Now().UTC(),
	}
}

func baseReq() VerifyRequest {
	return VerifyRequest{
		Email: "a@x.com",
		OTP:   "123456",
		UserData: domain.Profile{
			FirstName:   "Alice",
			LastName:    "Smith",
			Username:    "alice",
			Country:     "US",
			Currency:    "USD",
			AccountType: "trader",
			Password:    "password123",
			DateOfBirth: "1990-04-01",
		},
	}
}

// --- tests ---

func TestVerifyAndRegister_NoPendingVerification(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(vs, nil, nil, nil, nil)
	_, err := svc.VerifyAndRegister(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyAndRegister_ExpiredCode(t *testing.T) {
	vs := &mockVerificationStore{}
	v := liveVerification("123456")
	v.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	vs.On("Get", mock.Anything, "a@x.com").Return(v, nil)

	svc := newService(vs, nil, nil, nil, nil)
	_, err := svc.VerifyAndRegister(context.Background(), baseReq())

	require.Error(t, err)
	// Expired beats mismatch: even the right code fails once past TTL.
	assert.True(t, errors.Is(err, domain.ErrExpired))
}

func TestVerifyAndRegister_Mismatch_CountsAttempt(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(liveVerification("654321"), nil)
	vs.On("IncrementAttempts", mock.Anything, "a@x.com").Return(1, nil)

	svc := newService(vs, nil, nil, nil, nil)
	_, err := svc.VerifyAndRegister(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMismatch))
	vs.AssertExpectations(t)
}

func TestVerifyAndRegister_Mismatch_ExhaustionDeletesCode(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(liveVerification("654321"), nil)
	vs.On("IncrementAttempts", mock.Anything, "a@x.com").Return(5, nil)
	vs.On("Delete", mock.Anything, "a@x.com").Return(nil)

	svc := newService(vs, nil, nil, nil, nil)
	_, err := svc.VerifyAndRegister(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMismatch))
	vs.AssertExpectations(t)
}

func TestVerifyAndRegister_InvalidProfile(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(liveVerification("123456"), nil)

	req := baseReq()
	req.UserData.Currency = "usd" // must be 3-letter uppercase

	svc := newService(vs, nil, nil, nil, nil)
	_, err := svc.VerifyAndRegister(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidProfile))
}

func TestVerifyAndRegister_EmailAlreadyRegistered(t *testing.T) {
	vs := &mockVerificationStore{}
	as := &mockAccountStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(liveVerification("123456"), nil)
	as.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	as.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	svc := newService(vs, as, nil, nil, nil)
	_, err := svc.VerifyAndRegister(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestVerifyAndRegister_UsernameTaken(t *testing.T) {
	vs := &mockVerificationStore{}
	as := &mockAccountStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(liveVerification("123456"), nil)
	as.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.Account{AccountID: "other", Username: "alice"}, nil)

	svc := newService(vs, as, nil, nil, nil)
	_, err := svc.VerifyAndRegister(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	as.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVerifyAndRegister_HappyPath(t *testing.T) {
	vs := &mockVerificationStore{}
	as := &mockAccountStore{}
	ps := &mockPortfolioStore{}
	ns := &mockNotificationStore{}
	ev := &mockPublisher{}

	vs.On("Get", mock.Anything, "a@x.com").Return(liveVerification("123456"), nil)
	as.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	var created *domain.Account
	as.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Account) }).
		Return(nil)
	vs.On("Delete", mock.Anything, "a@x.com").Return(nil)
	ps.On("Put", mock.Anything, mock.AnythingOfType("*domain.Portfolio")).Return(nil)
	ns.On("Put", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
	ev.On("Publish", mock.Anything, "account.created", mock.Anything).Return(nil)

	svc := newService(vs, as, ps, ns, ev)
	a, err := svc.VerifyAndRegister(context.Background(), baseReq())

	require.NoError(t, err)
	assert.NotEmpty(t, a.AccountID)
	assert.Equal(t, "a@x.com", a.Email)
	assert.Equal(t, domain.RoleUser, a.Role)
	assert.True(t, a.Enable)

	// Password stored as a bcrypt hash, never plaintext.
	require.NotNil(t, created)
	assert.NotEqual(t, "password123", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")))

	vs.AssertExpectations(t)
	as.AssertExpectations(t)
	ps.AssertExpectations(t)
	ns.AssertExpectations(t)
	ev.AssertExpectations(t)
}

func TestVerifyAndRegister_DemoAccountGetsStartingCash(t *testing.T) {
	vs := &mockVerificationStore{}
	as := &mockAccountStore{}
	ps := &mockPortfolioStore{}
	ns := &mockNotificationStore{}

	vs.On("Get", mock.Anything, "a@x.com").Return(liveVerification("123456"), nil)
	as.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	as.On("Create", mock.Anything, mock.Anything).Return(nil)
	vs.On("Delete", mock.Anything, "a@x.com").Return(nil)
	var seeded *domain.Portfolio
	ps.On("Put", mock.Anything, mock.AnythingOfType("*domain.Portfolio")).
		Run(func(args mock.Arguments) { seeded = args.Get(1).(*domain.Portfolio) }).
		Return(nil)
	ns.On("Put", mock.Anything, mock.Anything).Return(nil)

	req := baseReq()
	req.UserData.AccountType = "demo"

	svc := newService(vs, as, ps, ns, nil)
	_, err := svc.VerifyAndRegister(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, seeded)
	assert.Equal(t, float64(100000), seeded.CashBalance)
	assert.Equal(t, "USD", seeded.Currency)
}

func TestVerifyAndRegister_DeleteFailureDoesNotFailRegistration(t *testing.T) {
	vs := &mockVerificationStore{}
	as := &mockAccountStore{}
	ps := &mockPortfolioStore{}
	ns := &mockNotificationStore{}

	vs.On("Get", mock.Anything, "a@x.com").Return(liveVerification("123456"), nil)
	as.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	as.On("Create", mock.Anything, mock.Anything).Return(nil)
	vs.On("Delete", mock.Anything, "a@x.com").Return(errors.New("dynamo error"))
	ps.On("Put", mock.Anything, mock.Anything).Return(nil)
	ns.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newService(vs, as, ps, ns, nil)
	a, err := svc.VerifyAndRegister(context.Background(), baseReq())

	require.NoError(t, err)
	assert.NotNil(t, a)
}

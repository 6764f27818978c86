package otp

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tradedash-api/internal/domain"
)

// --- mocks ---

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.PendingVerification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockVerificationStore) Get(ctx context.Context, email string) (*domain.PendingVerification, error) {
	args := m.Called(ctx, email)
	if v, _ := args.Get(0).(*domain.PendingVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// --- helpers ---

func testConfig() Config {
	return Config{Length: 6, TTL: 10 * time.Minute, MinInterval: time.Minute}
}

func TestRequest_FirstRequest_StoresAndSends(t *testing.T) {
	vs := &mockVerificationStore{}
	ml := &mockMailer{}
	vs.On("Get", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)

	var stored *domain.PendingVerification
	vs.On("Put", mock.Anything, mock.AnythingOfType("*domain.PendingVerification")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.PendingVerification) }).
		Return(nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(vs, ml, testConfig())
	code, err := svc.Request(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
	require.NotNil(t, stored)
	assert.Equal(t, code, stored.Code)
	assert.Equal(t, 0, stored.Attempts)
	assert.Greater(t, stored.ExpiresAt, time.Now().Unix())
	vs.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestRequest_TooSoon_RateLimited(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(&domain.PendingVerification{
		Email:     "a@x.com",
		CreatedAt: time.Now().UTC().Add(-10 * time.Second),
	}, nil)

	svc := NewService(vs, &mockMailer{}, testConfig())
	_, err := svc.Request(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	vs.AssertExpectations(t)
}

func TestRequest_AfterInterval_OverwritesPriorEntry(t *testing.T) {
	vs := &mockVerificationStore{}
	ml := &mockMailer{}
	vs.On("Get", mock.Anything, "a@x.com").Return(&domain.PendingVerification{
		Email:     "a@x.com",
		Code:      "111111",
		CreatedAt: time.Now().UTC().Add(-2 * time.Minute),
	}, nil)

	var stored *domain.PendingVerification
	vs.On("Put", mock.Anything, mock.AnythingOfType("*domain.PendingVerification")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.PendingVerification) }).
		Return(nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(vs, ml, testConfig())
	code, err := svc.Request(context.Background(), "a@x.com")

	require.NoError(t, err)
	// The Put keys on email, so the prior code is gone once this lands.
	require.NotNil(t, stored)
	assert.NotEqual(t, "111111", stored.Code)
	assert.Equal(t, code, stored.Code)
}

func TestRequest_StoreError_Propagates(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@x.com").Return(nil, domain.ErrUnavailable)

	svc := NewService(vs, &mockMailer{}, testConfig())
	_, err := svc.Request(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestRequest_MailerError_Propagates(t *testing.T) {
	vs := &mockVerificationStore{}
	ml := &mockMailer{}
	vs.On("Get", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)
	vs.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := NewService(vs, ml, testConfig())
	_, err := svc.Request(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.ErrorContains(t, err, "send OTP email")
}

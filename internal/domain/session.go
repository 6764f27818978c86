package domain

import "time"

// Session is the server-side record backing a bearer token. The JWT itself
// is stateless; this record exists so sessions can be revoked (logout) and
// refreshed. A valid session always references an extant Account.
type Session struct {
	SessionID        string    `json:"id" dynamodbav:"session_id"`
	AccountID        string    `json:"accountId" dynamodbav:"account_id"`
	Enable           bool      `json:"-" dynamodbav:"enable"`
	RefreshToken     string    `json:"-" dynamodbav:"refresh_token"`
	RefreshExpiresAt int64     `json:"-" dynamodbav:"refresh_expires_at"` // Unix seconds
	CreatedAt        time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"-" dynamodbav:"updated_at"`
}

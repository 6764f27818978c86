package domain

import "time"

// PendingVerification links an email to an outstanding OTP awaiting
// confirmation. PK: email — at most one live entry per address; a new
// request overwrites (and so invalidates) the prior one.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type PendingVerification struct {
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"-" dynamodbav:"code"`
	Attempts  int       `json:"-" dynamodbav:"attempts"`
	ExpiresAt int64     `json:"expiresAt" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// Expired reports whether the verification is past its TTL at time now.
func (v *PendingVerification) Expired(now time.Time) bool {
	return v.ExpiresAt < now.Unix()
}

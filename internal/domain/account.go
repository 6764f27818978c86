package domain

import "time"

// Account roles. Role-based access rules are not defined for this API;
// the field is stored and returned but grants nothing extra.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account types accepted at registration.
const (
	AccountTypeTrader   = "trader"
	AccountTypeInvestor = "investor"
	AccountTypeDemo     = "demo"
)

type Account struct {
	AccountID    string    `json:"id" dynamodbav:"account_id"`
	Email        string    `json:"email" dynamodbav:"email"`
	Username     string    `json:"username" dynamodbav:"username"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	FirstName    string    `json:"firstName" dynamodbav:"first_name"`
	LastName     string    `json:"lastName" dynamodbav:"last_name"`
	Country      string    `json:"country" dynamodbav:"country"`
	Currency     string    `json:"currency" dynamodbav:"currency"`
	AccountType  string    `json:"accountType" dynamodbav:"account_type"`
	DateOfBirth  string    `json:"dateOfBirth" dynamodbav:"date_of_birth"` // YYYY-MM-DD
	Role         string    `json:"role" dynamodbav:"role"`
	Enable       bool      `json:"-" dynamodbav:"enable"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"-" dynamodbav:"updated_at"`
}

// Profile is the userData payload submitted with an OTP verification.
// Field names match the public contract verbatim.
type Profile struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Username    string `json:"username" validate:"required,min=3,max=32"`
	Country     string `json:"country" validate:"required"`
	Currency    string `json:"currency" validate:"required,len=3,uppercase"`
	AccountType string `json:"accountType" validate:"required,oneof=trader investor demo"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
}

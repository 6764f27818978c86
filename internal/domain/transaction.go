package domain

import "time"

// Transaction kinds recorded against an account.
const (
	TxBuy      = "buy"
	TxSell     = "sell"
	TxDeposit  = "deposit"
	TxWithdraw = "withdraw"
)

type Transaction struct {
	TransactionID string    `json:"id" dynamodbav:"transaction_id"`
	AccountID     string    `json:"accountId" dynamodbav:"account_id"`
	Type          string    `json:"type" dynamodbav:"type"`
	Symbol        string    `json:"symbol,omitempty" dynamodbav:"symbol"`
	Quantity      float64   `json:"quantity,omitempty" dynamodbav:"quantity"`
	Price         float64   `json:"price,omitempty" dynamodbav:"price"`
	Amount        float64   `json:"amount" dynamodbav:"amount"`
	Currency      string    `json:"currency" dynamodbav:"currency"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"created_at"`
}

package domain

import "time"

// Holding is a single position inside a portfolio.
type Holding struct {
	Symbol   string  `json:"symbol" dynamodbav:"symbol"`
	Quantity float64 `json:"quantity" dynamodbav:"quantity"`
	AvgPrice float64 `json:"avgPrice" dynamodbav:"avg_price"`
	// LastPrice is the most recently observed market price, refreshed by an
	// external feed. Zero when no quote has been recorded yet.
	LastPrice float64 `json:"lastPrice" dynamodbav:"last_price"`
}

// MarketValue is the position's value at the last observed price, falling
// back to cost basis when no quote is available.
func (h Holding) MarketValue() float64 {
	price := h.LastPrice
	if price == 0 {
		price = h.AvgPrice
	}
	return h.Quantity * price
}

// CostBasis is quantity times average purchase price.
func (h Holding) CostBasis() float64 {
	return h.Quantity * h.AvgPrice
}

// Portfolio holds an account's cash balance and open positions.
// PK: account_id — one portfolio per account, seeded at registration.
type Portfolio struct {
	AccountID   string    `json:"accountId" dynamodbav:"account_id"`
	Currency    string    `json:"currency" dynamodbav:"currency"`
	CashBalance float64   `json:"cashBalance" dynamodbav:"cash_balance"`
	Holdings    []Holding `json:"holdings" dynamodbav:"holdings"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"-" dynamodbav:"updated_at"`
}

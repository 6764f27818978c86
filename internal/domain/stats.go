package domain

// Stats is the aggregate view served by /dashboard/stats, computed from the
// account's portfolio and transaction history.
type Stats struct {
	Currency         string  `json:"currency"`
	TotalValue       float64 `json:"totalValue"`
	CashBalance      float64 `json:"cashBalance"`
	InvestedValue    float64 `json:"investedValue"`
	UnrealizedPL     float64 `json:"unrealizedPl"`
	UnrealizedPLPct  float64 `json:"unrealizedPlPct"`
	OpenPositions    int     `json:"openPositions"`
	TransactionCount int     `json:"transactionCount"`
}

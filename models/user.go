package models

import "github.com/shopspring/decimal"

// UserProfile holds the per-user settings synced as a single document
// rather than a list. Today that is only the monthly budget.
type UserProfile struct {
	Budget decimal.Decimal `json:"budget"`
}

type SetBudgetRequest struct {
	Budget decimal.Decimal `json:"budget" binding:"required"`
}

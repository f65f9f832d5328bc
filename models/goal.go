package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Goal struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	SavedAmount  decimal.Decimal `json:"savedAmount"`
	UserID       string          `json:"userId"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type CreateGoalRequest struct {
	Name         string          `json:"name" binding:"required"`
	TargetAmount decimal.Decimal `json:"targetAmount" binding:"required"`
}

type FundGoalRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// IsComplete is derived, never stored.
func (g Goal) IsComplete() bool {
	return g.SavedAmount.GreaterThanOrEqual(g.TargetAmount)
}

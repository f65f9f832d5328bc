package models

import "github.com/shopspring/decimal"

// Subscription is a recurring monthly charge (Netflix, gym, ...).
type Subscription struct {
	ID     string          `json:"id"`
	UserID string          `json:"userId"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	DueDay int             `json:"dueDay"` // 1-31
	Icon   string          `json:"icon,omitempty"`
}

type CreateSubscriptionRequest struct {
	Name   string          `json:"name" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	DueDay int             `json:"dueDay" binding:"required,min=1,max=31"`
	Icon   string          `json:"icon"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds
const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	UserID      string          `json:"userId"`
	Type        string          `json:"type"` // "expense" | "income"
}

type CreateTransactionRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Type        string          `json:"type" binding:"required,oneof=expense income"`
}

// IsExpense treats untyped legacy records as expenses, like the mobile app did.
func (t Transaction) IsExpense() bool {
	return t.Type == TypeExpense || t.Type == ""
}

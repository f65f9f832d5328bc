package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Spending health statuses
const (
	HealthSafe    = "Safe"
	HealthWarning = "Warning"
	HealthDanger  = "Danger"
)

type SpendingHealth struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Color   string `json:"color"`
}

var (
	warningTolerance = decimal.NewFromFloat(1.1) // 10% au-dessus du rythme attendu
	dangerTolerance  = decimal.NewFromFloat(1.2) // 20% au-dessus du rythme attendu
)

// CalculateSpendingHealth compare les dépenses du mois au rythme
// linéaire attendu pour le budget donné, au jour près.
func CalculateSpendingHealth(totalBudget, totalExpenses decimal.Decimal, now time.Time) SpendingHealth {
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	currentDay := now.Day()

	if !totalBudget.IsPositive() {
		return SpendingHealth{
			Status:  HealthWarning,
			Message: "Set a budget in Profile to get smart advice!",
			Color:   "#fbbf24",
		}
	}

	// Budget 3000, jour 10/30 -> on s'attend à 1000 de dépensé
	expected := totalBudget.
		Div(decimal.NewFromInt(int64(daysInMonth))).
		Mul(decimal.NewFromInt(int64(currentDay)))

	switch {
	case totalExpenses.LessThanOrEqual(expected):
		return SpendingHealth{
			Status:  HealthSafe,
			Message: "Great job! You are on track to save money this month.",
			Color:   "#10b981",
		}
	case totalExpenses.LessThanOrEqual(expected.Mul(warningTolerance)):
		return SpendingHealth{
			Status:  HealthSafe,
			Message: "Great job! You are on track to save money this month.",
			Color:   "#34d399",
		}
	case totalExpenses.LessThanOrEqual(expected.Mul(dangerTolerance)):
		return SpendingHealth{
			Status:  HealthWarning,
			Message: "Careful! You are spending slightly faster than the daily average.",
			Color:   "#fbbf24",
		}
	}

	// Rythme critique : estimer combien de jours avant épuisement
	dailyAvg := totalExpenses.Div(decimal.NewFromInt(int64(currentDay)))
	remaining := totalBudget.Sub(totalExpenses)
	daysLeft := int64(0)
	if remaining.IsPositive() && dailyAvg.IsPositive() {
		daysLeft = remaining.Div(dailyAvg).IntPart()
	}

	return SpendingHealth{
		Status:  HealthDanger,
		Message: fmt.Sprintf("Critical! At this pace, you will run out of money in %d days. Stop spending!", daysLeft),
		Color:   "#ef4444",
	}
}

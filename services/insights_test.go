package services

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCalculateSpendingHealth(t *testing.T) {
	// June 15th of a 30-day month: a 3000 budget expects 1500 spent.
	midJune := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		budget   int64
		expenses int64
		status   string
	}{
		{"under pace", 3000, 1000, HealthSafe},
		{"exactly on pace", 3000, 1500, HealthSafe},
		{"within 10 percent", 3000, 1640, HealthSafe},
		{"within 20 percent", 3000, 1790, HealthWarning},
		{"past 20 percent", 3000, 2200, HealthDanger},
		{"no budget set", 0, 500, HealthWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CalculateSpendingHealth(decimal.NewFromInt(tt.budget), decimal.NewFromInt(tt.expenses), midJune)
			if h.Status != tt.status {
				t.Fatalf("status = %s, want %s", h.Status, tt.status)
			}
			if h.Message == "" || h.Color == "" {
				t.Fatal("message and color must always be set")
			}
		})
	}
}

func TestSpendingHealthDangerEstimatesDaysLeft(t *testing.T) {
	// Day 10, spent 2000 of 3000: 200/day average, 1000 left -> 5 days.
	now := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	h := CalculateSpendingHealth(decimal.NewFromInt(3000), decimal.NewFromInt(2000), now)

	if h.Status != HealthDanger {
		t.Fatalf("status = %s, want %s", h.Status, HealthDanger)
	}
	if !strings.Contains(h.Message, "5 days") {
		t.Fatalf("message = %q, want the 5-day estimate", h.Message)
	}
}

func TestSpendingHealthBudgetAlreadyGone(t *testing.T) {
	now := time.Date(2026, 6, 20, 9, 0, 0, 0, time.UTC)
	h := CalculateSpendingHealth(decimal.NewFromInt(1000), decimal.NewFromInt(1400), now)

	if h.Status != HealthDanger {
		t.Fatalf("status = %s, want %s", h.Status, HealthDanger)
	}
	if !strings.Contains(h.Message, "0 days") {
		t.Fatalf("message = %q, want a 0-day estimate when nothing remains", h.Message)
	}
}

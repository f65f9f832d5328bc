package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/masroufi/sync-api/middleware"
	"github.com/masroufi/sync-api/models"
	"github.com/masroufi/sync-api/services"
)

type UserHandler struct {
	Budgets      *services.BudgetService
	Transactions *services.TransactionService
}

// GetBudget returns the caller's monthly budget (remote first, cache
// fallback).
func (h *UserHandler) GetBudget(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": h.Budgets.GetBudget(c.Request.Context(), userID)})
}

// SetBudget saves the caller's monthly budget. Unlike list mutations
// this surfaces a remote failure: the local cache is already updated
// but the caller must know the setting did not reach the server.
func (h *UserHandler) SetBudget(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Budget.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Budget cannot be negative"})
		return
	}

	if err := h.Budgets.SetBudget(c.Request.Context(), userID, req.Budget); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Budget saved locally but not confirmed remotely"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Budget updated"})
}

// GetSpendingHealth compares this month's expenses to the budget pace.
func (h *UserHandler) GetSpendingHealth(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	now := time.Now()
	budget := h.Budgets.GetBudget(c.Request.Context(), userID)
	expenses, err := h.Transactions.MonthlyExpenses(c.Request.Context(), userID, now)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Remote store unavailable"})
		return
	}

	c.JSON(http.StatusOK, services.CalculateSpendingHealth(budget, expenses, now))
}

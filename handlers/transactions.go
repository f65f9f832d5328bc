package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/masroufi/sync-api/middleware"
	"github.com/masroufi/sync-api/models"
	"github.com/masroufi/sync-api/services"
)

type TransactionHandler struct {
	Service *services.TransactionService
}

// CreateTransaction records a transaction for the caller. The response
// id may be a local_ temporary id when the device-side sync has not
// confirmed remotely yet; clients treat both the same.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
		return
	}

	t := models.Transaction{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
		UserID:      userID,
		Type:        req.Type,
	}
	id := h.Service.AddTransaction(c.Request.Context(), t)

	c.JSON(http.StatusCreated, gin.H{
		"id":      id,
		"pending": services.IsLocalID(id),
	})
}

// GetTransactions returns the caller's cached snapshot (the fast path
// the mobile UI renders first).
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, h.Service.CachedTransactions(userID))
}

// DeleteTransaction removes a transaction. Always succeeds from the
// caller's perspective; the remote delete is fire-and-forget.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	h.Service.DeleteTransaction(c.Request.Context(), userID, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// GetMonthlyExpenses sums the caller's expenses for the current month.
func (h *TransactionHandler) GetMonthlyExpenses(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	total, err := h.Service.MonthlyExpenses(c.Request.Context(), userID, time.Now())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Remote store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

// GetCategories returns the fixed category catalogue.
func (h *TransactionHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.Categories)
}

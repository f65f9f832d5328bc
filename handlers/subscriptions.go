package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masroufi/sync-api/middleware"
	"github.com/masroufi/sync-api/models"
	"github.com/masroufi/sync-api/services"
)

type SubscriptionHandler struct {
	Service *services.SubscriptionService
}

// CreateSubscription records a recurring subscription.
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
		return
	}

	id := h.Service.AddSubscription(c.Request.Context(), models.Subscription{
		UserID: userID,
		Name:   req.Name,
		Amount: req.Amount,
		DueDay: req.DueDay,
		Icon:   req.Icon,
	})

	c.JSON(http.StatusCreated, gin.H{
		"id":      id,
		"pending": services.IsLocalID(id),
	})
}

// GetSubscriptions returns the caller's cached snapshot.
func (h *SubscriptionHandler) GetSubscriptions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, h.Service.CachedSubscriptions(userID))
}

// UpdateSubscription merges new fields into a subscription.
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.Service.UpdateSubscription(c.Request.Context(), models.Subscription{
		ID:     c.Param("id"),
		UserID: userID,
		Name:   req.Name,
		Amount: req.Amount,
		DueDay: req.DueDay,
		Icon:   req.Icon,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Subscription updated"})
}

// DeleteSubscription removes a subscription.
func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	h.Service.DeleteSubscription(c.Request.Context(), userID, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted"})
}

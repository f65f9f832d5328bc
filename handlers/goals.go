package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masroufi/sync-api/middleware"
	"github.com/masroufi/sync-api/models"
	"github.com/masroufi/sync-api/services"
)

type GoalHandler struct {
	Service *services.GoalService
}

// CreateGoal starts a new savings goal at savedAmount 0.
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.TargetAmount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target amount must be positive"})
		return
	}

	id := h.Service.AddGoal(c.Request.Context(), models.Goal{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		UserID:       userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"id":      id,
		"pending": services.IsLocalID(id),
	})
}

// GetGoals returns the caller's cached snapshot.
func (h *GoalHandler) GetGoals(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, h.Service.CachedGoals(userID))
}

// FundGoal adds to a goal's saved amount.
func (h *GoalHandler) FundGoal(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.FundGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.Service.UpdateGoalProgress(c.Request.Context(), userID, c.Param("id"), req.Amount)
	c.JSON(http.StatusOK, gin.H{"message": "Goal funded"})
}

// UpdateGoal renames a goal or changes its target.
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.Service.UpdateGoal(c.Request.Context(), userID, c.Param("id"), req.Name, req.TargetAmount)
	c.JSON(http.StatusOK, gin.H{"message": "Goal updated"})
}

// DeleteGoal removes a goal.
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	h.Service.DeleteGoal(c.Request.Context(), userID, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}

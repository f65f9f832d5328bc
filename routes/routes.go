package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/masroufi/sync-api/handlers"
	"github.com/masroufi/sync-api/services"
)

// Services groups everything the route setup needs.
type Services struct {
	Transactions  *services.TransactionService
	Goals         *services.GoalService
	Subscriptions *services.SubscriptionService
	Budgets       *services.BudgetService
}

// SetupSyncRoutes wires the protected entity routes.
func SetupSyncRoutes(rg *gin.RouterGroup, svc Services) {
	txHandler := &handlers.TransactionHandler{Service: svc.Transactions}
	rg.GET("/transactions", txHandler.GetTransactions)
	rg.POST("/transactions", txHandler.CreateTransaction)
	rg.DELETE("/transactions/:id", txHandler.DeleteTransaction)
	rg.GET("/transactions/monthly-expenses", txHandler.GetMonthlyExpenses)
	rg.GET("/categories", txHandler.GetCategories)

	goalHandler := &handlers.GoalHandler{Service: svc.Goals}
	rg.GET("/goals", goalHandler.GetGoals)
	rg.POST("/goals", goalHandler.CreateGoal)
	rg.PUT("/goals/:id", goalHandler.UpdateGoal)
	rg.POST("/goals/:id/fund", goalHandler.FundGoal)
	rg.DELETE("/goals/:id", goalHandler.DeleteGoal)

	subHandler := &handlers.SubscriptionHandler{Service: svc.Subscriptions}
	rg.GET("/subscriptions", subHandler.GetSubscriptions)
	rg.POST("/subscriptions", subHandler.CreateSubscription)
	rg.PUT("/subscriptions/:id", subHandler.UpdateSubscription)
	rg.DELETE("/subscriptions/:id", subHandler.DeleteSubscription)

	userHandler := &handlers.UserHandler{Budgets: svc.Budgets, Transactions: svc.Transactions}
	rg.GET("/user/budget", userHandler.GetBudget)
	rg.PUT("/user/budget", userHandler.SetBudget)
	rg.GET("/user/spending-health", userHandler.GetSpendingHealth)
}

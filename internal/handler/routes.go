package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	accountHandler *AccountHandler,
	categoryHandler *CategoryHandler,
	transactionHandler *TransactionHandler,
	plannedPaymentHandler *PlannedPaymentHandler,
	recurringHandler *RecurringHandler,
	exchangeRateHandler *ExchangeRateHandler,
	wsHandler *WebSocketHandler,
) {
	// API version 1
	api := e.Group("/api/v1")

	// Account routes
	accounts := api.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Category routes
	categories := api.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/transfers", transactionHandler.CreateTransfer)

	// Planned payment routes
	plannedPayments := api.Group("/planned-payments")
	plannedPayments.POST("", plannedPaymentHandler.Create)
	plannedPayments.GET("", plannedPaymentHandler.GetAll)
	plannedPayments.GET("/due", plannedPaymentHandler.GetDueFeed)
	plannedPayments.GET("/:id", plannedPaymentHandler.GetByID)
	plannedPayments.PUT("/:id", plannedPaymentHandler.Update)
	plannedPayments.DELETE("/:id", plannedPaymentHandler.Delete)
	plannedPayments.GET("/:id/history", plannedPaymentHandler.GetHistory)
	plannedPayments.POST("/:id/pay", plannedPaymentHandler.Pay)
	plannedPayments.POST("/:id/skip", plannedPaymentHandler.Skip)

	// Recurring engine routes
	recurring := api.Group("/recurring")
	recurring.POST("/process", recurringHandler.Process)

	// Exchange rate routes
	exchangeRates := api.Group("/exchange-rates")
	exchangeRates.PUT("", exchangeRateHandler.SetRate)
	exchangeRates.GET("", exchangeRateHandler.GetRates)
	exchangeRates.GET("/convert", exchangeRateHandler.Convert)

	// WebSocket endpoint
	e.GET("/ws", wsHandler.HandleWS)
}

package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/fintrack/fintrack/internal/budget"
	"github.com/fintrack/fintrack/internal/expense"
	"github.com/fintrack/fintrack/internal/savings"
	"github.com/fintrack/fintrack/internal/transport/middleware"
	"github.com/fintrack/fintrack/internal/transport/swagger"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, expenseHandler *expense.Handler, budgetHandler *budget.Handler, savingsHandler *savings.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	router.Route("/expense", func(r chi.Router) {
		r.Get("/", expenseHandler.ListExpenses)      // GET /expense?userId=
		r.Post("/", expenseHandler.CreateExpense)    // POST /expense
		r.Put("/", expenseHandler.UpdateExpense)     // PUT /expense
		r.Delete("/", expenseHandler.DeleteExpense)  // DELETE /expense?id=&userId=
	})

	router.Route("/budget", func(r chi.Router) {
		r.Get("/", budgetHandler.ListBudgets)      // GET /budget?userId=
		r.Post("/", budgetHandler.CreateBudget)    // POST /budget
		r.Put("/", budgetHandler.UpdateBudget)     // PUT /budget?userId=
		r.Delete("/", budgetHandler.DeleteBudget)  // DELETE /budget?id=&userId=
	})

	router.Route("/savings", func(r chi.Router) {
		r.Get("/", savingsHandler.ListGoals)          // GET /savings?userId=
		r.Post("/", savingsHandler.CreateGoal)        // POST /savings
		r.Delete("/", savingsHandler.DeleteGoal)      // DELETE /savings?id=&userId=
		r.Get("/history", savingsHandler.GoalHistory) // GET /savings/history?goalId=&userId=
		r.Patch("/amount", savingsHandler.Deposit)    // PATCH /savings/amount
		r.Patch("/withdraw", savingsHandler.Withdraw) // PATCH /savings/withdraw
		r.Patch("/{id}", savingsHandler.SetStatus)    // PATCH /savings/:id
	})

	router.Get("/balance", savingsHandler.GetBalance) // GET /balance?userId=
}

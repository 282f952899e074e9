package cmd

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack/internal/budget"
	budgetRepo "github.com/fintrack/fintrack/internal/budget/postgres"
	"github.com/fintrack/fintrack/internal/expense"
	expenseRepo "github.com/fintrack/fintrack/internal/expense/postgres"
	"github.com/fintrack/fintrack/internal/savings"
	savingsRepo "github.com/fintrack/fintrack/internal/savings/postgres"
	"github.com/fintrack/fintrack/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm over db connection: %v", err)
		}

		if clearData {
			for _, table := range []string{"savings_history", "savings", "expenses", "budgets"} {
				if err := gormDB.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			log.Println("cleared existing data")
		}

		lg := logger.LoggerWrapper()
		ctx := context.Background()

		expenseService := expense.NewService(expenseRepo.NewExpenseRepository(gormDB), nil, lg)
		budgetService := budget.NewService(budgetRepo.NewBudgetRepository(gormDB), lg)
		savingsService := savings.NewService(savingsRepo.NewSavingsRepository(gormDB), nil, lg)

		const demoUser = int64(1)
		now := time.Now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, -1)

		groceries, err := budgetService.CreateBudget(budget.CreateBudgetDTO{
			UserID:        demoUser,
			Name:          "Groceries",
			Description:   "Monthly grocery envelope",
			PeriodType:    budget.PeriodMonthly,
			StartDate:     monthStart,
			EndDate:       monthEnd,
			Category:      "groceries",
			PlannedAmount: decimal.NewFromInt(600),
		})
		if err != nil {
			log.Fatalf("failed to seed budget: %v", err)
		}

		seedExpenses := []expense.CreateExpenseDTO{
			{UserID: demoUser, Name: "Salary", Date: monthStart, Amount: decimal.NewFromInt(4200), Type: expense.TypeIncome, PaymentMethod: "transfer", Category: "salary"},
			{UserID: demoUser, Name: "Weekly shop", Date: monthStart.AddDate(0, 0, 3), Amount: decimal.NewFromInt(85), Type: expense.TypeExpense, PaymentMethod: "card", Category: "groceries"},
			{UserID: demoUser, Name: "Farmers market", Date: monthStart.AddDate(0, 0, 10), Amount: decimal.NewFromInt(42), Type: expense.TypeExpense, PaymentMethod: "cash", Category: "groceries"},
			{UserID: demoUser, Name: "Dinner out", Date: monthStart.AddDate(0, 0, 12), Amount: decimal.NewFromInt(64), Type: expense.TypeExpense, PaymentMethod: "card", Category: "dining"},
		}
		for _, dto := range seedExpenses {
			if _, err := expenseService.CreateExpense(ctx, dto); err != nil {
				log.Fatalf("failed to seed expense %q: %v", dto.Name, err)
			}
		}

		vacation, err := savingsService.CreateGoal(savings.CreateGoalDTO{
			UserID:      demoUser,
			Name:        "Vacation",
			Description: "Two weeks away next summer",
			Target:      decimal.NewFromInt(2500),
			TargetDate:  now.AddDate(1, 0, 0),
		})
		if err != nil {
			log.Fatalf("failed to seed savings goal: %v", err)
		}

		if _, err := savingsService.Deposit(ctx, savings.TransferDTO{ID: vacation.ID, Amount: decimal.NewFromInt(300)}); err != nil {
			log.Fatalf("failed to seed deposit: %v", err)
		}

		spent, err := budgetService.RecalculateSpent(groceries.ID)
		if err != nil {
			log.Fatalf("failed to recompute seeded budget: %v", err)
		}

		log.Printf("seeded demo user %d: budget %d (spent %s), goal %d", demoUser, groceries.ID, spent, vacation.ID)
	},
}

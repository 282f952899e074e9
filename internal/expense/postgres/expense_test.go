package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack/internal"
	"github.com/fintrack/fintrack/internal/budget"
	"github.com/fintrack/fintrack/internal/expense"
)

func TestExpenseRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Repository Suite")
}

type SQLiteExpense struct {
	ID            int64           `gorm:"primaryKey"`
	UserID        int64           `gorm:"column:user_id;not null"`
	Name          string          `gorm:"not null"`
	Date          time.Time       `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Type          string          `gorm:"not null"`
	PaymentMethod string          `gorm:"column:payment_method"`
	Category      string          `gorm:"column:category"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (SQLiteExpense) TableName() string {
	return "expenses"
}

type SQLiteBudget struct {
	ID            int64           `gorm:"primaryKey"`
	UserID        int64           `gorm:"column:user_id;not null"`
	Name          string          `gorm:"not null"`
	Description   string          `gorm:"column:description"`
	PeriodType    string          `gorm:"column:period_type"`
	StartDate     time.Time       `gorm:"column:start_date"`
	EndDate       time.Time       `gorm:"column:end_date"`
	Category      string          `gorm:"not null"`
	PlannedAmount decimal.Decimal `gorm:"column:planned_amount;type:decimal(20,2)"`
	SpentAmount   decimal.Decimal `gorm:"column:spent_amount;type:decimal(20,2)"`
	RollOver      bool            `gorm:"column:roll_over"`
	IsActive      bool            `gorm:"column:is_active"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (SQLiteBudget) TableName() string {
	return "budgets"
}

var _ = Describe("ExpenseRepository", func() {
	var (
		db   *gorm.DB
		repo expense.RepositoryAPI

		marchStart = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		marchEnd   = time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
		marchMid   = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	)

	seedBudget := func(userID int64, category string, active bool, createdAt time.Time) *budget.Budget {
		b := &budget.Budget{
			UserID:        userID,
			Name:          category + " budget",
			PeriodType:    budget.PeriodMonthly,
			StartDate:     marchStart,
			EndDate:       marchEnd,
			Category:      category,
			PlannedAmount: decimal.NewFromInt(500),
			SpentAmount:   decimal.Zero,
			IsActive:      active,
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		}
		Expect(db.Create(b).Error).NotTo(HaveOccurred())
		return b
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteExpense{}, &SQLiteBudget{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewExpenseRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("should create an expense successfully", func() {
			e := &expense.Expense{
				UserID:   1,
				Name:     "weekly shop",
				Date:     marchMid,
				Amount:   decimal.NewFromInt(42),
				Type:     expense.TypeExpense,
				Category: "groceries",
			}

			err := repo.Create(e)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.ID).To(BeNumerically(">", 0))
		})
	})

	Describe("GetByID", func() {
		It("should retrieve a created expense", func() {
			e := &expense.Expense{
				UserID:   1,
				Name:     "weekly shop",
				Date:     marchMid,
				Amount:   decimal.NewFromInt(42),
				Type:     expense.TypeExpense,
				Category: "groceries",
			}
			Expect(repo.Create(e)).NotTo(HaveOccurred())

			retrieved, err := repo.GetByID(e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Name).To(Equal("weekly shop"))
			Expect(retrieved.Amount.Equal(decimal.NewFromInt(42))).To(BeTrue())
		})

		It("should return ErrExpenseNotFound for a non-existent ID", func() {
			retrieved, err := repo.GetByID(99999)
			Expect(err).To(Equal(internal.ErrExpenseNotFound))
			Expect(retrieved).To(BeNil())
		})
	})

	Describe("MatchBudget", func() {
		It("should select the covering active budget", func() {
			b := seedBudget(1, "groceries", true, marchStart)

			matched, err := repo.MatchBudget(1, "groceries", marchMid)
			Expect(err).NotTo(HaveOccurred())
			Expect(matched).NotTo(BeNil())
			Expect(matched.ID).To(Equal(b.ID))
		})

		It("should ignore the time of day on the window's last date", func() {
			b := seedBudget(1, "groceries", true, marchStart)

			matched, err := repo.MatchBudget(1, "groceries", time.Date(2024, time.March, 31, 15, 0, 0, 0, time.UTC))
			Expect(err).NotTo(HaveOccurred())
			Expect(matched).NotTo(BeNil())
			Expect(matched.ID).To(Equal(b.ID))
		})

		It("should agree with the pure matcher on boundary dates", func() {
			seedBudget(1, "groceries", true, marchStart)
			seedBudget(1, "groceries", false, marchStart.AddDate(0, 0, 1))

			var candidates []*budget.Budget
			Expect(db.Where("user_id = ?", 1).Find(&candidates).Error).NotTo(HaveOccurred())

			for _, date := range []time.Time{
				marchStart,
				time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC),
				time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			} {
				matched, err := repo.MatchBudget(1, "groceries", date)
				Expect(err).NotTo(HaveOccurred())

				pure := budget.Match(candidates, "groceries", date)
				if pure == nil {
					Expect(matched).To(BeNil())
				} else {
					Expect(matched).NotTo(BeNil())
					Expect(matched.ID).To(Equal(pure.ID))
				}
			}
		})

		It("should prefer the most recently created budget", func() {
			seedBudget(1, "groceries", true, marchStart)
			newer := seedBudget(1, "groceries", true, marchStart.AddDate(0, 0, 5))

			matched, err := repo.MatchBudget(1, "groceries", marchMid)
			Expect(err).NotTo(HaveOccurred())
			Expect(matched.ID).To(Equal(newer.ID))
		})

		It("should skip inactive budgets", func() {
			seedBudget(1, "groceries", false, marchStart)

			matched, err := repo.MatchBudget(1, "groceries", marchMid)
			Expect(err).NotTo(HaveOccurred())
			Expect(matched).To(BeNil())
		})

		It("should return nil outside the budget window", func() {
			seedBudget(1, "groceries", true, marchStart)

			matched, err := repo.MatchBudget(1, "groceries", time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC))
			Expect(err).NotTo(HaveOccurred())
			Expect(matched).To(BeNil())
		})

		It("should not cross users", func() {
			seedBudget(2, "groceries", true, marchStart)

			matched, err := repo.MatchBudget(1, "groceries", marchMid)
			Expect(err).NotTo(HaveOccurred())
			Expect(matched).To(BeNil())
		})
	})

	Describe("AddSpentAmount", func() {
		It("should apply deltas atomically", func() {
			b := seedBudget(1, "groceries", true, marchStart)

			Expect(repo.AddSpentAmount(b.ID, decimal.NewFromInt(30))).NotTo(HaveOccurred())
			Expect(repo.AddSpentAmount(b.ID, decimal.NewFromInt(70))).NotTo(HaveOccurred())
			Expect(repo.AddSpentAmount(b.ID, decimal.NewFromInt(-20))).NotTo(HaveOccurred())

			var stored budget.Budget
			Expect(db.First(&stored, b.ID).Error).NotTo(HaveOccurred())
			Expect(stored.SpentAmount.Equal(decimal.NewFromInt(80))).To(BeTrue())
		})

		It("should return ErrBudgetNotFound for a missing budget", func() {
			err := repo.AddSpentAmount(99999, decimal.NewFromInt(10))
			Expect(err).To(Equal(internal.ErrBudgetNotFound))
		})
	})

	Describe("Transaction", func() {
		It("should roll back every write when fn fails", func() {
			b := seedBudget(1, "groceries", true, marchStart)

			err := repo.Transaction(context.Background(), func(tx expense.RepositoryAPI) error {
				e := &expense.Expense{
					UserID:   1,
					Name:     "weekly shop",
					Date:     marchMid,
					Amount:   decimal.NewFromInt(30),
					Type:     expense.TypeExpense,
					Category: "groceries",
				}
				if err := tx.Create(e); err != nil {
					return err
				}
				if err := tx.AddSpentAmount(b.ID, e.Amount); err != nil {
					return err
				}
				return errors.New("boom")
			})
			Expect(err).To(HaveOccurred())

			var count int64
			Expect(db.Model(&SQLiteExpense{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(BeZero())

			var stored budget.Budget
			Expect(db.First(&stored, b.ID).Error).NotTo(HaveOccurred())
			Expect(stored.SpentAmount.IsZero()).To(BeTrue())
		})

		It("should commit when fn succeeds", func() {
			b := seedBudget(1, "groceries", true, marchStart)

			err := repo.Transaction(context.Background(), func(tx expense.RepositoryAPI) error {
				e := &expense.Expense{
					UserID:   1,
					Name:     "weekly shop",
					Date:     marchMid,
					Amount:   decimal.NewFromInt(30),
					Type:     expense.TypeExpense,
					Category: "groceries",
				}
				if err := tx.Create(e); err != nil {
					return err
				}
				return tx.AddSpentAmount(b.ID, e.Amount)
			})
			Expect(err).NotTo(HaveOccurred())

			var stored budget.Budget
			Expect(db.First(&stored, b.ID).Error).NotTo(HaveOccurred())
			Expect(stored.SpentAmount.Equal(decimal.NewFromInt(30))).To(BeTrue())
		})
	})
})

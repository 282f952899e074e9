package expense_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fintrack/fintrack/internal/budget"
	"github.com/fintrack/fintrack/internal/expense"
	expensePostgres "github.com/fintrack/fintrack/internal/expense/postgres"
	"github.com/fintrack/fintrack/internal/transport"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

var _ = Describe("Expense Handler Integration", func() {
	var (
		db      *gorm.DB
		service *expense.Service
		handler *expense.Handler

		marchStart = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		marchEnd   = time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&expense.Expense{}, &budget.Budget{})
		Expect(err).NotTo(HaveOccurred())

		repo := expensePostgres.NewExpenseRepository(db)
		service = expense.NewService(repo, nil, testLogger())
		handler = &expense.Handler{
			BaseHandler: transport.NewBaseHandler(testLogger()),
			Service:     service,
		}

		b := &budget.Budget{
			UserID:        1,
			Name:          "groceries budget",
			PeriodType:    budget.PeriodMonthly,
			StartDate:     marchStart,
			EndDate:       marchEnd,
			Category:      "groceries",
			PlannedAmount: decimal.NewFromInt(500),
			SpentAmount:   decimal.Zero,
			IsActive:      true,
		}
		Expect(db.Create(b).Error).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("POST /expense", func() {
		It("should create the expense and charge the budget", func() {
			body := map[string]interface{}{
				"user_id":  1,
				"name":     "weekly shop",
				"date":     "2024-03-15T00:00:00Z",
				"amount":   "42.50",
				"type":     "expense",
				"category": "groceries",
			}
			payload, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/expense", bytes.NewReader(payload))
			w := httptest.NewRecorder()

			handler.CreateExpense(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

			var response apiEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())
			Expect(response.Success).To(BeTrue())

			var stored budget.Budget
			Expect(db.Where("category = ?", "groceries").First(&stored).Error).NotTo(HaveOccurred())
			Expect(stored.SpentAmount.Equal(decimal.RequireFromString("42.50"))).To(BeTrue())
		})

		It("should reject a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/expense", bytes.NewReader([]byte("{not json")))
			w := httptest.NewRecorder()

			handler.CreateExpense(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject an expense without a category", func() {
			body := map[string]interface{}{
				"user_id": 1,
				"name":    "mystery spend",
				"date":    "2024-03-15T00:00:00Z",
				"amount":  "10",
				"type":    "expense",
			}
			payload, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/expense", bytes.NewReader(payload))
			w := httptest.NewRecorder()

			handler.CreateExpense(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))

			var response apiEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())
			Expect(response.Success).To(BeFalse())
			Expect(response.Message).To(ContainSubstring("category"))
		})
	})

	Describe("GET /expense", func() {
		It("should list the user's expenses", func() {
			_, err := service.CreateExpense(context.Background(), expense.CreateExpenseDTO{
				UserID: 1, Name: "weekly shop",
				Date:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
				Amount: decimal.NewFromInt(30), Type: expense.TypeExpense, Category: "groceries",
			})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/expense?userId=1", nil)
			w := httptest.NewRecorder()

			handler.ListExpenses(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var response apiEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())

			var listed []expense.Expense
			Expect(json.Unmarshal(response.Data, &listed)).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].Name).To(Equal("weekly shop"))
		})

		It("should require the userId parameter", func() {
			req := httptest.NewRequest(http.MethodGet, "/expense", nil)
			w := httptest.NewRecorder()

			handler.ListExpenses(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DELETE /expense", func() {
		It("should report not found for another user's expense", func() {
			created, err := service.CreateExpense(context.Background(), expense.CreateExpenseDTO{
				UserID: 1, Name: "weekly shop",
				Date:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
				Amount: decimal.NewFromInt(30), Type: expense.TypeExpense, Category: "groceries",
			})
			Expect(err).NotTo(HaveOccurred())

			url := fmt.Sprintf("/expense?id=%d&userId=2", created.ID)
			req := httptest.NewRequest(http.MethodDelete, url, nil)
			w := httptest.NewRecorder()

			handler.DeleteExpense(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))

			var response apiEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())
			Expect(response.Success).To(BeFalse())
		})
	})
})

package savings_test

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

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fintrack/fintrack/internal/expense"
	"github.com/fintrack/fintrack/internal/savings"
	savingsPostgres "github.com/fintrack/fintrack/internal/savings/postgres"
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

var _ = Describe("Savings Handler Integration", func() {
	var (
		db      *gorm.DB
		service *savings.Service
		handler *savings.Handler
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&savings.Goal{}, &savings.HistoryEntry{}, &expense.Expense{})
		Expect(err).NotTo(HaveOccurred())

		repo := savingsPostgres.NewSavingsRepository(db)
		service = savings.NewService(repo, nil, testLogger())
		handler = &savings.Handler{
			BaseHandler: transport.NewBaseHandler(testLogger()),
			Service:     service,
		}

		// give user 1 some discretionary balance
		income := &expense.Expense{
			UserID: 1,
			Name:   "salary",
			Date:   time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
			Amount: decimal.NewFromInt(1000),
			Type:   expense.TypeIncome,
		}
		Expect(db.Create(income).Error).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	createGoal := func(target int64) *savings.Goal {
		goal, err := service.CreateGoal(savings.CreateGoalDTO{
			UserID:     1,
			Name:       "vacation",
			Target:     decimal.NewFromInt(target),
			TargetDate: time.Now().AddDate(1, 0, 0),
		})
		Expect(err).NotTo(HaveOccurred())
		return goal
	}

	Describe("POST /savings", func() {
		It("should create a goal", func() {
			body := map[string]interface{}{
				"user_id":     1,
				"name":        "vacation",
				"goal":        "1500",
				"target_date": "2027-06-01T00:00:00Z",
			}
			payload, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/savings", bytes.NewReader(payload))
			w := httptest.NewRecorder()

			handler.CreateGoal(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))

			var response apiEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())
			Expect(response.Success).To(BeTrue())

			var created savings.Goal
			Expect(json.Unmarshal(response.Data, &created)).NotTo(HaveOccurred())
			Expect(created.Status).To(Equal(savings.StatusActive))
		})
	})

	Describe("GET /savings/history", func() {
		It("should return not found for another user's goal", func() {
			goal := createGoal(500)
			_, err := service.Deposit(context.Background(), savings.TransferDTO{ID: goal.ID, Amount: decimal.NewFromInt(100)})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/savings/history?goalId=%d&userId=2", goal.ID), nil)
			w := httptest.NewRecorder()

			handler.GoalHistory(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should require a userId", func() {
			goal := createGoal(500)

			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/savings/history?goalId=%d", goal.ID), nil)
			w := httptest.NewRecorder()

			handler.GoalHistory(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should list the owner's transfers", func() {
			goal := createGoal(500)
			_, err := service.Deposit(context.Background(), savings.TransferDTO{ID: goal.ID, Amount: decimal.NewFromInt(100)})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/savings/history?goalId=%d&userId=1", goal.ID), nil)
			w := httptest.NewRecorder()

			handler.GoalHistory(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var response apiEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())
			Expect(response.Success).To(BeTrue())

			var entries []savings.HistoryEntry
			Expect(json.Unmarshal(response.Data, &entries)).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})
	})

	Describe("PATCH /savings/amount", func() {
		It("should apply a covered deposit", func() {
			goal := createGoal(2000)

			payload, err := json.Marshal(map[string]interface{}{"id": goal.ID, "amount": "400"})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPatch, "/savings/amount", bytes.NewReader(payload))
			w := httptest.NewRecorder()

			handler.Deposit(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var response apiEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())

			var updated savings.Goal
			Expect(json.Unmarshal(response.Data, &updated)).NotTo(HaveOccurred())
			Expect(updated.Amount.Equal(decimal.NewFromInt(400))).To(BeTrue())
		})

		It("should reject a deposit beyond the discretionary balance", func() {
			goal := createGoal(5000)

			payload, err := json.Marshal(map[string]interface{}{"id": goal.ID, "amount": "1500"})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPatch, "/savings/amount", bytes.NewReader(payload))
			w := httptest.NewRecorder()

			handler.Deposit(w, req)

			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))

			var response apiEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())
			Expect(response.Success).To(BeFalse())
			Expect(response.Message).To(ContainSubstring("balance"))
		})
	})

	Describe("PATCH /savings/withdraw", func() {
		It("should reject a withdrawal beyond the saved amount", func() {
			goal := createGoal(2000)
			_, err := service.Deposit(context.Background(), savings.TransferDTO{ID: goal.ID, Amount: decimal.NewFromInt(200)})
			Expect(err).NotTo(HaveOccurred())

			payload, err := json.Marshal(map[string]interface{}{"id": goal.ID, "amount": "500"})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPatch, "/savings/withdraw", bytes.NewReader(payload))
			w := httptest.NewRecorder()

			handler.Withdraw(w, req)

			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})
	})

	Describe("PATCH /savings/{id}", func() {
		It("should apply a status override through the router", func() {
			goal := createGoal(2000)

			router := chi.NewRouter()
			router.Patch("/savings/{id}", handler.SetStatus)

			payload, err := json.Marshal(map[string]interface{}{"status": "atRisk"})
			Expect(err).NotTo(HaveOccurred())

			url := fmt.Sprintf("/savings/%d", goal.ID)
			req := httptest.NewRequest(http.MethodPatch, url, bytes.NewReader(payload))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var response apiEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())

			var updated savings.Goal
			Expect(json.Unmarshal(response.Data, &updated)).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(savings.StatusAtRisk))
		})
	})

	Describe("GET /balance", func() {
		It("should fold transfers into the balance", func() {
			goal := createGoal(2000)
			_, err := service.Deposit(context.Background(), savings.TransferDTO{ID: goal.ID, Amount: decimal.NewFromInt(400)})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/balance?userId=1", nil)
			w := httptest.NewRecorder()

			handler.GetBalance(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var response apiEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())

			var data struct {
				Balance decimal.Decimal `json:"balance"`
			}
			Expect(json.Unmarshal(response.Data, &data)).NotTo(HaveOccurred())
			Expect(data.Balance.Equal(decimal.NewFromInt(600))).To(BeTrue())
		})
	})
})

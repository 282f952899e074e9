package expense

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fintrack/fintrack/internal/transport"
	"github.com/fintrack/fintrack/pkg/logger"
)

type ServiceAPI interface {
	CreateExpense(ctx context.Context, dto CreateExpenseDTO) (*Expense, error)
	UpdateExpense(ctx context.Context, dto UpdateExpenseDTO) (*Expense, error)
	DeleteExpense(ctx context.Context, id, userID int64) (*Expense, error)
	ListExpenses(userID int64) ([]*Expense, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "userId")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	expenses, err := h.Service.ListExpenses(userID)
	if err != nil {
		h.Logger.Error("ListExpenses: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expenses)
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var dto CreateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exp, err := h.Service.CreateExpense(r.Context(), dto)
	if err != nil {
		h.Logger.Error("CreateExpense: service error", "error", err, "user_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, exp)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var dto UpdateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exp, err := h.Service.UpdateExpense(r.Context(), dto)
	if err != nil {
		h.Logger.Error("UpdateExpense: service error", "error", err, "expense_id", dto.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "id query parameter is required")
		return
	}
	userID, ok := parseIDParam(r, "userId")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	exp, err := h.Service.DeleteExpense(r.Context(), id, userID)
	if err != nil {
		h.Logger.Error("DeleteExpense: service error", "error", err, "expense_id", id, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, exp)
}

func parseIDParam(r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

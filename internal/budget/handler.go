package budget

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fintrack/fintrack/internal/transport"
	"github.com/fintrack/fintrack/pkg/logger"
)

type ServiceAPI interface {
	CreateBudget(dto CreateBudgetDTO) (*Budget, error)
	ListBudgets(userID int64) ([]*Budget, error)
	UpdateBudget(userID int64, dto UpdateBudgetDTO) (*Budget, error)
	DeleteBudget(id, userID int64) (*Budget, error)
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

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(r, "userId")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	budgets, err := h.Service.ListBudgets(userID)
	if err != nil {
		h.Logger.Error("ListBudgets: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, budgets)
}

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var dto CreateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateBudget: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.CreateBudget(dto)
	if err != nil {
		h.Logger.Error("CreateBudget: service error", "error", err, "user_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(r, "userId")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	var dto UpdateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateBudget: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.UpdateBudget(userID, dto)
	if err != nil {
		h.Logger.Error("UpdateBudget: service error", "error", err, "budget_id", dto.ID, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "id")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "id query parameter is required")
		return
	}
	userID, ok := queryID(r, "userId")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	b, err := h.Service.DeleteBudget(id, userID)
	if err != nil {
		h.Logger.Error("DeleteBudget: service error", "error", err, "budget_id", id, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func queryID(r *http.Request, name string) (int64, bool) {
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

package savings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/transport"
	"github.com/fintrack/fintrack/pkg/logger"
)

type ServiceAPI interface {
	CreateGoal(dto CreateGoalDTO) (*Goal, error)
	ListGoals(userID int64) ([]*Goal, error)
	History(goalID, userID int64) ([]*HistoryEntry, error)
	Balance(userID int64) (decimal.Decimal, error)
	Deposit(ctx context.Context, dto TransferDTO) (*Goal, error)
	Withdraw(ctx context.Context, dto TransferDTO) (*Goal, error)
	DeleteGoal(ctx context.Context, id, userID int64) (*Goal, error)
	SetStatus(goalID int64, dto SetStatusDTO) (*Goal, error)
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

func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(r, "userId")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	goals, err := h.Service.ListGoals(userID)
	if err != nil {
		h.Logger.Error("ListGoals: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, goals)
}

func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var dto CreateGoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateGoal: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.Service.CreateGoal(dto)
	if err != nil {
		h.Logger.Error("CreateGoal: service error", "error", err, "user_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, goal)
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var dto TransferDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Deposit: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.Service.Deposit(r.Context(), dto)
	if err != nil {
		h.Logger.Error("Deposit: service error", "error", err, "goal_id", dto.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, goal)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var dto TransferDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Withdraw: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.Service.Withdraw(r.Context(), dto)
	if err != nil {
		h.Logger.Error("Withdraw: service error", "error", err, "goal_id", dto.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, goal)
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
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

	goal, err := h.Service.DeleteGoal(r.Context(), id, userID)
	if err != nil {
		h.Logger.Error("DeleteGoal: service error", "error", err, "goal_id", id, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, goal)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	goalIDStr := chi.URLParam(r, "id")
	goalID, err := strconv.ParseInt(goalIDStr, 10, 64)
	if err != nil || goalID <= 0 {
		h.Logger.Error("SetStatus: invalid goal ID", "id", goalIDStr)
		h.WriteError(w, http.StatusBadRequest, "invalid goal ID")
		return
	}

	var dto SetStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SetStatus: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.Service.SetStatus(goalID, dto)
	if err != nil {
		h.Logger.Error("SetStatus: service error", "error", err, "goal_id", goalID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, goal)
}

func (h *Handler) GoalHistory(w http.ResponseWriter, r *http.Request) {
	goalID, ok := queryID(r, "goalId")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "goalId query parameter is required")
		return
	}
	userID, ok := queryID(r, "userId")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	entries, err := h.Service.History(goalID, userID)
	if err != nil {
		h.Logger.Error("GoalHistory: service error", "error", err, "goal_id", goalID, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(r, "userId")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	balance, err := h.Service.Balance(userID)
	if err != nil {
		h.Logger.Error("GetBalance: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"balance": balance,
	})
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

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dropplus/server/internal/domain"
	"github.com/dropplus/server/internal/service"
	"github.com/dropplus/server/internal/store"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dropplus_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dropplus_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

type Handler struct {
	deposits *service.DepositService
	queries  *service.QueryService
	admin    *service.AdminService
	log      *slog.Logger
}

func NewHandler(deposits *service.DepositService, queries *service.QueryService, admin *service.AdminService, log *slog.Logger) *Handler {
	return &Handler{deposits: deposits, queries: queries, admin: admin, log: log}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/api/deposit"))
	defer timer.ObserveDuration()

	var req domain.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/api/deposit")
		return
	}

	result, err := h.deposits.RecordDeposit(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingSchoolID):
			h.respondError(w, http.StatusBadRequest, "Missing school_id", "POST", "/api/deposit")
		case errors.Is(err, service.ErrInvalidBottleCount):
			h.respondError(w, http.StatusBadRequest, "bottle_count must be integer > 0", "POST", "/api/deposit")
		case errors.Is(err, service.ErrDeviceUnauthorized):
			h.respondError(w, http.StatusUnauthorized, "Device auth failed", "POST", "/api/deposit")
		default:
			h.log.Error("deposit failed", "school_id", req.SchoolID, "device_id", req.DeviceID, "error", err)
			h.respondError(w, http.StatusInternalServerError, "DB error", "POST", "/api/deposit")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, depositResponse{
		OK:          true,
		SchoolID:    result.SchoolID,
		PointsAdded: result.PointsAdded,
		TotalPoints: result.TotalPoints,
	}, "POST", "/api/deposit")
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.queries.Leaderboard(r.Context())
	if err != nil {
		h.log.Error("leaderboard query failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "DB error", "GET", "/api/leaderboard")
		return
	}
	h.respondJSON(w, http.StatusOK, leaderboardResponse{OK: true, Leaderboard: board}, "GET", "/api/leaderboard")
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	schoolID := mux.Vars(r)["school_id"]

	user, err := h.queries.UserSummary(r.Context(), schoolID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found", "GET", "/api/user/{school_id}")
			return
		}
		h.log.Error("user summary failed", "school_id", schoolID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "DB error", "GET", "/api/user/{school_id}")
		return
	}
	h.respondJSON(w, http.StatusOK, userResponse{OK: true, User: *user}, "GET", "/api/user/{school_id}")
}

func (h *Handler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	schoolID := mux.Vars(r)["school_id"]

	txs, err := h.queries.UserTransactions(r.Context(), schoolID)
	if err != nil {
		h.log.Error("transactions query failed", "school_id", schoolID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "DB error", "GET", "/api/user/{school_id}/transactions")
		return
	}
	h.respondJSON(w, http.StatusOK, transactionsResponse{OK: true, Transactions: txs}, "GET", "/api/user/{school_id}/transactions")
}

func (h *Handler) AdminReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/api/admin/reset")
		return
	}

	if err := h.admin.Reset(r.Context(), req.Key); err != nil {
		if errors.Is(err, service.ErrAdminUnauthorized) {
			h.respondError(w, http.StatusUnauthorized, "Unauthorized", "POST", "/api/admin/reset")
			return
		}
		h.log.Error("admin reset failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "DB error", "POST", "/api/admin/reset")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, "POST", "/api/admin/reset")
}

type depositResponse struct {
	OK          bool   `json:"ok"`
	SchoolID    string `json:"school_id"`
	PointsAdded int64  `json:"points_added"`
	TotalPoints int64  `json:"total_points"`
}

type leaderboardResponse struct {
	OK          bool                 `json:"ok"`
	Leaderboard []domain.UserSummary `json:"leaderboard"`
}

type userResponse struct {
	OK   bool               `json:"ok"`
	User domain.UserSummary `json:"user"`
}

type transactionsResponse struct {
	OK           bool                 `json:"ok"`
	Transactions []domain.Transaction `json:"transactions"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Helpers
func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, errorResponse{OK: false, Error: msg}, method, endpoint)
}

package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router mounts the API routes, /metrics, /health, and (when staticDir is
// non-empty) the static site on everything else.
func (h *Handler) Router(staticDir string) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.Health).Methods("GET")

	r.HandleFunc("/api/deposit", h.Deposit).Methods("POST")
	r.HandleFunc("/api/leaderboard", h.Leaderboard).Methods("GET")
	r.HandleFunc("/api/user/{school_id}", h.GetUser).Methods("GET")
	r.HandleFunc("/api/user/{school_id}/transactions", h.GetUserTransactions).Methods("GET")
	r.HandleFunc("/api/admin/reset", h.AdminReset).Methods("POST")

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}

	return r
}

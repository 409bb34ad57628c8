package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hollis/grocer/internal/checklist"
	"github.com/hollis/grocer/internal/handler"
	"github.com/hollis/grocer/internal/middleware"
	"github.com/hollis/grocer/internal/session"
	"github.com/hollis/grocer/internal/store"
	"github.com/hollis/grocer/internal/stream"
)

type Server struct {
	router      *store.Router
	hub         *stream.Hub
	checklistH  *handler.ChecklistHandler
	historyH    *handler.HistoryHandler
	authH       *handler.AuthHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// Config carries the pieces main assembles before the HTTP layer starts.
type Config struct {
	PassphraseHash string
	RemoteUser     string
}

func New(router *store.Router, svc *checklist.Service, broker *session.Broker, cfg Config, logger *slog.Logger) *Server {
	hub := stream.NewHub(logger.With("component", "stream"))
	rateLimiter := middleware.NewRateLimiter()

	return &Server{
		router:      router,
		hub:         hub,
		checklistH:  handler.NewChecklistHandler(svc, hub, logger.With("handler", "checklist")),
		historyH:    handler.NewHistoryHandler(svc, hub, logger.With("handler", "history")),
		authH:       handler.NewAuthHandler(cfg.PassphraseHash, cfg.RemoteUser, broker, rateLimiter, logger.With("handler", "auth")),
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// Hub exposes the change feed hub.
func (s *Server) Hub() *stream.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Session routes
	mux.HandleFunc("POST /api/login", s.authH.Login)
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/session", s.authH.Session)

	// Checklist routes
	mux.HandleFunc("GET /api/checklists", s.checklistH.List)
	mux.HandleFunc("POST /api/checklists", s.checklistH.Create)
	mux.HandleFunc("GET /api/checklists/{id}", s.checklistH.Get)
	mux.HandleFunc("PATCH /api/checklists/{id}", s.checklistH.Update)
	mux.HandleFunc("DELETE /api/checklists/{id}", s.checklistH.Delete)
	mux.HandleFunc("POST /api/checklists/{id}/open", s.checklistH.Open)
	mux.HandleFunc("GET /api/checklists/{id}/stats", s.checklistH.Stats)

	// Line routes
	mux.HandleFunc("GET /api/checklists/{id}/entries", s.checklistH.Entries)
	mux.HandleFunc("POST /api/checklists/{id}/items", s.checklistH.AddItem)
	mux.HandleFunc("PATCH /api/checklists/{id}/items/{line_id}", s.checklistH.UpdateItem)
	mux.HandleFunc("DELETE /api/checklists/{id}/items/{line_id}", s.checklistH.RemoveItem)
	mux.HandleFunc("POST /api/checklists/{id}/items/{line_id}/reorder", s.checklistH.ReorderItem)
	mux.HandleFunc("POST /api/checklists/{id}/items/{line_id}/checked", s.checklistH.SetItemChecked)

	// Checkout and history routes
	mux.HandleFunc("POST /api/checklists/{id}/checkout", s.checklistH.Checkout)
	mux.HandleFunc("GET /api/history", s.historyH.List)
	mux.HandleFunc("GET /api/history/{id}", s.historyH.Get)
	mux.HandleFunc("DELETE /api/history/{id}", s.historyH.Delete)
	mux.HandleFunc("GET /api/history/{id}/total", s.historyH.CheckedTotal)
	mux.HandleFunc("GET /api/stats/categories", s.historyH.CategoryTotals)

	// Change feed
	mux.HandleFunc("GET /ws", stream.Handler(s.hub, s.logger.With("component", "stream")))

	chain := middleware.RequestID(mux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(chain)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/hollis/grocer/internal/checklist"
	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/stream"
)

type HistoryHandler struct {
	svc    *checklist.Service
	hub    *stream.Hub
	logger *slog.Logger
}

func NewHistoryHandler(svc *checklist.Service, hub *stream.Hub, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{svc: svc, hub: hub, logger: logger}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	histories, err := h.svc.ListHistory(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if histories == nil {
		histories = []model.History{}
	}
	writeJSON(w, http.StatusOK, histories)
}

type historyResponse struct {
	History *model.History      `json:"history"`
	Items   []model.HistoryItem `json:"items"`
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	hist, items, err := h.svc.GetHistory(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []model.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, historyResponse{History: hist, Items: items})
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.svc.DeleteHistory(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(stream.NewEvent("history", "deleted", id, 0))
	w.WriteHeader(http.StatusNoContent)
}

// CheckedTotal sums the price of lines that were checked at checkout time.
func (h *HistoryHandler) CheckedTotal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	total, err := h.svc.HistoryCheckedTotal(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"total": total})
}

// CategoryTotals reports spend per category per calendar month across all
// recorded shops.
func (h *HistoryHandler) CategoryTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.CategoryMonthTotals(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if totals == nil {
		totals = []model.CategoryMonthTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}

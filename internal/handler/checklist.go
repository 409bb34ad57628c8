package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hollis/grocer/internal/checklist"
	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/stream"
)

type ChecklistHandler struct {
	svc    *checklist.Service
	hub    *stream.Hub
	logger *slog.Logger
}

func NewChecklistHandler(svc *checklist.Service, hub *stream.Hub, logger *slog.Logger) *ChecklistHandler {
	return &ChecklistHandler{svc: svc, hub: hub, logger: logger}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil
}

type checklistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	c, err := h.svc.CreateChecklist(r.Context(), req.Name, req.Description, req.Icon, req.Color)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(stream.NewEvent("checklist", "created", c.ID, c.ID))
	writeJSON(w, http.StatusCreated, c)
}

func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	checklists, err := h.svc.ListChecklists(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if checklists == nil {
		checklists = []model.Checklist{}
	}
	writeJSON(w, http.StatusOK, checklists)
}

func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	c, err := h.svc.GetChecklist(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Open stamps the checklist's last-opened time and returns it.
func (h *ChecklistHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	c, err := h.svc.TouchOpened(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ChecklistHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var patch checklist.ChecklistPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	c, err := h.svc.UpdateChecklist(r.Context(), id, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(stream.NewEvent("checklist", "updated", id, id))
	writeJSON(w, http.StatusOK, c)
}

func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.svc.DeleteChecklist(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(stream.NewEvent("checklist", "deleted", id, id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChecklistHandler) Entries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	entries, err := h.svc.Entries(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []checklist.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ChecklistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var in checklist.AddItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	entry, err := h.svc.AddItem(r.Context(), id, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(stream.NewEvent("checklist_item", "created", entry.Line.ID, id))
	writeJSON(w, http.StatusCreated, entry)
}

func (h *ChecklistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	lineID, ok2 := pathID(r, "line_id")
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var patch checklist.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	entry, err := h.svc.UpdateItem(r.Context(), id, lineID, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(stream.NewEvent("checklist_item", "updated", lineID, id))
	writeJSON(w, http.StatusOK, entry)
}

type reorderRequest struct {
	Position int `json:"position"`
}

func (h *ChecklistHandler) ReorderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	lineID, ok2 := pathID(r, "line_id")
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := h.svc.ReorderItem(r.Context(), id, lineID, req.Position); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(stream.NewEvent("checklist_item", "reordered", lineID, id))
	w.WriteHeader(http.StatusNoContent)
}

type checkedRequest struct {
	Checked bool `json:"checked"`
}

func (h *ChecklistHandler) SetItemChecked(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	lineID, ok2 := pathID(r, "line_id")
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req checkedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	line, err := h.svc.SetItemChecked(r.Context(), id, lineID, req.Checked)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(stream.NewEvent("checklist_item", "checked", lineID, id))
	writeJSON(w, http.StatusOK, line)
}

func (h *ChecklistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	lineID, ok2 := pathID(r, "line_id")
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.svc.RemoveItem(r.Context(), id, lineID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(stream.NewEvent("checklist_item", "deleted", lineID, id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChecklistHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	hist, err := h.svc.Checkout(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(stream.NewEvent("history", "created", hist.ID, id))
	writeJSON(w, http.StatusCreated, hist)
}

// Stats returns the checklist's line count and summed price.
func (h *ChecklistHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	count, err := h.svc.ItemCount(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	total, err := h.svc.ChecklistTotal(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": count, "total": total})
}

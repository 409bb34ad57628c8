// Package checklist holds the domain logic above the store router: keeping
// each checklist's 1-based order column dense across inserts, moves and
// deletes, and archiving finished shopping trips.
package checklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hollis/grocer/internal/ident"
	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/store"
)

// ErrOutOfRange rejects a reorder whose target position is outside
// [0, item count).
var ErrOutOfRange = errors.New("target position out of range")

// Service routes all persistence through the given provider, which in
// production is the backend router. It never inspects which backend is
// active; the ordering and id semantics are identical on both.
type Service struct {
	provider store.Provider
	ids      *ident.Generator
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(provider store.Provider, ids *ident.Generator, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		ids:      ids,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// pin freezes the active backend for the duration of one multi-call
// operation, so a session flip between calls cannot read orders from one
// backend and write the renumbering to the other.
func (s *Service) pin() store.Provider {
	if r, ok := s.provider.(interface{ Snapshot() store.Provider }); ok {
		return r.Snapshot()
	}
	return s.provider
}

// Entry is one displayable checklist line: the line itself plus the catalog
// item it references.
type Entry struct {
	Line model.ChecklistItem `json:"line"`
	Item model.Item          `json:"item"`
}

// --- Checklists ---

func (s *Service) CreateChecklist(ctx context.Context, name, description, icon, color string) (*model.Checklist, error) {
	now := s.now()
	c := &model.Checklist{
		ID:          s.ids.NextID(),
		Name:        name,
		Description: description,
		Icon:        icon,
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.provider.Checklists().Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetChecklist(ctx context.Context, id int64) (*model.Checklist, error) {
	return s.provider.Checklists().GetByID(ctx, id)
}

func (s *Service) ListChecklists(ctx context.Context) ([]model.Checklist, error) {
	return s.provider.Checklists().List(ctx)
}

// ChecklistPatch carries field-level overrides for a checklist edit; nil
// fields are left untouched.
type ChecklistPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
}

func (s *Service) UpdateChecklist(ctx context.Context, id int64, patch ChecklistPatch) (*model.Checklist, error) {
	p := s.pin()
	c, err := p.Checklists().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Icon != nil {
		c.Icon = *patch.Icon
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	c.UpdatedAt = s.now()
	if err := p.Checklists().Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteChecklist(ctx context.Context, id int64) error {
	return s.provider.Checklists().Delete(ctx, id)
}

// TouchOpened stamps the checklist's last-opened time.
func (s *Service) TouchOpened(ctx context.Context, id int64) (*model.Checklist, error) {
	p := s.pin()
	c, err := p.Checklists().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	c.LastOpenedAt = &now
	c.UpdatedAt = now
	if err := p.Checklists().Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// --- Lines ---

// AddItemInput describes a new line: the catalog fields of the item and the
// quantity for this checklist.
type AddItemInput struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	MeasureType  string  `json:"measure_type"`
	MeasureValue float64 `json:"measure_value"`
	PhotoRef     string  `json:"photo_ref"`
	Quantity     int     `json:"quantity"`
}

// AddItem creates the catalog item and appends a line at position max+1.
// Appending never renumbers existing lines.
func (s *Service) AddItem(ctx context.Context, checklistID int64, in AddItemInput) (*Entry, error) {
	p := s.pin()
	if _, err := p.Checklists().GetByID(ctx, checklistID); err != nil {
		return nil, err
	}

	lines, err := p.ChecklistItems().ListByChecklist(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	maxOrder := 0
	for _, line := range lines {
		if line.Order > maxOrder {
			maxOrder = line.Order
		}
	}

	now := s.now()
	item := &model.Item{
		ID:           s.ids.NextID(),
		Name:         in.Name,
		Price:        in.Price,
		Category:     in.Category,
		MeasureType:  in.MeasureType,
		MeasureValue: in.MeasureValue,
		PhotoRef:     in.PhotoRef,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.Items().Create(ctx, item); err != nil {
		return nil, err
	}

	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}
	line := &model.ChecklistItem{
		ID:          s.ids.NextID(),
		ChecklistID: checklistID,
		ItemID:      item.ID,
		Order:       maxOrder + 1,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.ChecklistItems().Create(ctx, line); err != nil {
		return nil, err
	}
	return &Entry{Line: *line, Item: *item}, nil
}

// Entries returns the checklist's lines in order, joined with their catalog
// items.
func (s *Service) Entries(ctx context.Context, checklistID int64) ([]Entry, error) {
	return s.entries(ctx, s.pin(), checklistID)
}

func (s *Service) entries(ctx context.Context, p store.Provider, checklistID int64) ([]Entry, error) {
	if _, err := p.Checklists().GetByID(ctx, checklistID); err != nil {
		return nil, err
	}
	lines, err := p.ChecklistItems().ListByChecklist(ctx, checklistID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		item, err := p.Items().GetByID(ctx, line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve item %d: %w", line.ItemID, err)
		}
		entries = append(entries, Entry{Line: line, Item: *item})
	}
	return entries, nil
}

// ReorderItem moves a line to target (0-based) and renumbers the rest so the
// order column stays the contiguous range 1..count. Moving a line onto its
// own position is a no-op.
func (s *Service) ReorderItem(ctx context.Context, checklistID, lineID int64, target int) error {
	p := s.pin()
	lines, err := p.ChecklistItems().ListByChecklist(ctx, checklistID)
	if err != nil {
		return err
	}
	if target < 0 || target >= len(lines) {
		return fmt.Errorf("reorder to %d of %d: %w", target, len(lines), ErrOutOfRange)
	}

	current := -1
	for i, line := range lines {
		if line.ID == lineID {
			current = i
			break
		}
	}
	if current == -1 {
		return fmt.Errorf("reorder item %d: %w", lineID, store.ErrNotFound)
	}
	if current == target {
		return nil
	}

	// Pull the moved line out, shift everything at or past the target down
	// one slot, and drop the moved line into the gap.
	rest := make([]model.ChecklistItem, 0, len(lines)-1)
	rest = append(rest, lines[:current]...)
	rest = append(rest, lines[current+1:]...)

	assignments := make([]store.OrderAssignment, 0, len(lines))
	for i, line := range rest {
		order := i + 1
		if i >= target {
			order = i + 2
		}
		assignments = append(assignments, store.OrderAssignment{ChecklistItemID: line.ID, Order: order})
	}
	assignments = append(assignments, store.OrderAssignment{ChecklistItemID: lineID, Order: target + 1})

	if err := p.ChecklistItems().ReplaceOrders(ctx, checklistID, assignments); err != nil {
		return err
	}
	s.logger.Debug("reordered line", "checklist", checklistID, "line", lineID, "from", current, "to", target)
	return nil
}

// RemoveItem deletes a line and renumbers the remaining ones to close the
// gap.
func (s *Service) RemoveItem(ctx context.Context, checklistID, lineID int64) error {
	p := s.pin()
	line, err := p.ChecklistItems().GetByID(ctx, lineID)
	if err != nil {
		return err
	}
	if line.ChecklistID != checklistID {
		return fmt.Errorf("remove item %d: %w", lineID, store.ErrNotFound)
	}

	if err := p.ChecklistItems().Delete(ctx, lineID); err != nil {
		return err
	}

	remaining, err := p.ChecklistItems().ListByChecklist(ctx, checklistID)
	if err != nil {
		return err
	}
	assignments := make([]store.OrderAssignment, 0, len(remaining))
	for i, l := range remaining {
		assignments = append(assignments, store.OrderAssignment{ChecklistItemID: l.ID, Order: i + 1})
	}
	if len(assignments) == 0 {
		return nil
	}
	return p.ChecklistItems().ReplaceOrders(ctx, checklistID, assignments)
}

// ItemPatch carries field-level overrides for a line edit. The line's
// position is never touched here; that is ReorderItem's job.
type ItemPatch struct {
	Name         *string  `json:"name"`
	Price        *float64 `json:"price"`
	Category     *string  `json:"category"`
	MeasureType  *string  `json:"measure_type"`
	MeasureValue *float64 `json:"measure_value"`
	PhotoRef     *string  `json:"photo_ref"`
	Quantity     *int     `json:"quantity"`
}

func (s *Service) UpdateItem(ctx context.Context, checklistID, lineID int64, patch ItemPatch) (*Entry, error) {
	p := s.pin()
	line, err := p.ChecklistItems().GetByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.ChecklistID != checklistID {
		return nil, fmt.Errorf("update item %d: %w", lineID, store.ErrNotFound)
	}
	item, err := p.Items().GetByID(ctx, line.ItemID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.MeasureType != nil {
		item.MeasureType = *patch.MeasureType
	}
	if patch.MeasureValue != nil {
		item.MeasureValue = *patch.MeasureValue
	}
	if patch.PhotoRef != nil {
		item.PhotoRef = *patch.PhotoRef
	}
	item.UpdatedAt = now
	if err := p.Items().Update(ctx, item); err != nil {
		return nil, err
	}

	if patch.Quantity != nil {
		line.Quantity = *patch.Quantity
		line.UpdatedAt = now
		if err := p.ChecklistItems().Update(ctx, line); err != nil {
			return nil, err
		}
	}
	return &Entry{Line: *line, Item: *item}, nil
}

// SetItemChecked marks a line as picked up (or puts it back). The flag is
// frozen into the history snapshot at checkout.
func (s *Service) SetItemChecked(ctx context.Context, checklistID, lineID int64, checked bool) (*model.ChecklistItem, error) {
	p := s.pin()
	line, err := p.ChecklistItems().GetByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.ChecklistID != checklistID {
		return nil, fmt.Errorf("check item %d: %w", lineID, store.ErrNotFound)
	}
	if line.Checked == checked {
		return line, nil
	}
	line.Checked = checked
	line.UpdatedAt = s.now()
	if err := p.ChecklistItems().Update(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// --- History ---

// Checkout archives the checklist's current state as an immutable shopping
// trip and stamps the checklist's last-shop time. The working list itself is
// left untouched.
func (s *Service) Checkout(ctx context.Context, checklistID int64) (*model.History, error) {
	p := s.pin()
	c, err := p.Checklists().GetByID(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries(ctx, p, checklistID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	h := &model.History{
		ID:          s.ids.NextID(),
		ChecklistID: c.ID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		CreatedAt:   now,
	}
	items := make([]model.HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, model.HistoryItem{
			ID:              s.ids.NextID(),
			HistoryID:       h.ID,
			ChecklistItemID: e.Line.ID,
			Name:            e.Item.Name,
			Price:           e.Item.Price,
			Category:        e.Item.Category,
			MeasureType:     e.Item.MeasureType,
			MeasureValue:    e.Item.MeasureValue,
			PhotoRef:        e.Item.PhotoRef,
			Order:           e.Line.Order,
			Quantity:        e.Line.Quantity,
			IsChecked:       e.Line.Checked,
			CreatedAt:       now,
		})
	}

	if err := p.Histories().Create(ctx, h, items); err != nil {
		return nil, err
	}

	c.LastShopAt = &now
	c.UpdatedAt = now
	if err := p.Checklists().Update(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("checked out", "checklist", checklistID, "history", h.ID, "lines", len(items))
	return h, nil
}

func (s *Service) ListHistory(ctx context.Context) ([]model.History, error) {
	return s.provider.Histories().List(ctx)
}

func (s *Service) GetHistory(ctx context.Context, id int64) (*model.History, []model.HistoryItem, error) {
	p := s.pin()
	h, err := p.Histories().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := p.Histories().ListItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return h, items, nil
}

func (s *Service) DeleteHistory(ctx context.Context, id int64) error {
	return s.provider.Histories().Delete(ctx, id)
}

// --- Aggregates ---

func (s *Service) ItemCount(ctx context.Context, checklistID int64) (int, error) {
	return s.provider.Stats().ItemCount(ctx, checklistID)
}

func (s *Service) ChecklistTotal(ctx context.Context, checklistID int64) (float64, error) {
	return s.provider.Stats().ChecklistTotal(ctx, checklistID)
}

func (s *Service) HistoryCheckedTotal(ctx context.Context, historyID int64) (float64, error) {
	return s.provider.Stats().HistoryCheckedTotal(ctx, historyID)
}

func (s *Service) CategoryMonthTotals(ctx context.Context) ([]model.CategoryMonthTotal, error) {
	return s.provider.Stats().CategoryMonthTotals(ctx)
}

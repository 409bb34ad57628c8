package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/store"
)

func makeHistory(t *testing.T, p *Provider, checklistID int64, items []model.HistoryItem) *model.History {
	t.Helper()
	h := &model.History{
		ID:          nextTestID(),
		ChecklistID: checklistID,
		Name:        "Weekly",
		CreatedAt:   time.Now().UTC(),
	}
	for i := range items {
		items[i].HistoryID = h.ID
	}
	if err := p.Histories().Create(context.Background(), h, items); err != nil {
		t.Fatalf("create history: %v", err)
	}
	return h
}

func TestHistorySnapshotSurvivesChecklistDelete(t *testing.T) {
	p := setupTestProvider(t)
	ctx := context.Background()

	c := makeChecklist(t, p, "Weekly")
	h := makeHistory(t, p, c.ID, []model.HistoryItem{
		{ID: nextTestID(), ChecklistItemID: 1, Name: "Milk", Price: 3.5, Quantity: 1, Order: 1, IsChecked: true, CreatedAt: time.Now().UTC()},
		{ID: nextTestID(), ChecklistItemID: 2, Name: "Bread", Price: 2, Quantity: 2, Order: 2, CreatedAt: time.Now().UTC()},
	})

	if err := p.Checklists().Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete checklist: %v", err)
	}

	got, err := p.Histories().GetByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("history should survive checklist delete: %v", err)
	}
	if got.ChecklistID != c.ID {
		t.Errorf("checklist_id = %d, want %d", got.ChecklistID, c.ID)
	}

	items, err := p.Histories().ListItems(ctx, h.ID)
	if err != nil {
		t.Fatalf("list history items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 frozen lines, got %d", len(items))
	}
	if items[0].Name != "Milk" || !items[0].IsChecked {
		t.Errorf("items[0] = %q checked=%v, want Milk checked", items[0].Name, items[0].IsChecked)
	}
}

func TestHistoryDeleteCascadesItems(t *testing.T) {
	p := setupTestProvider(t)
	ctx := context.Background()

	h := makeHistory(t, p, 1, []model.HistoryItem{
		{ID: nextTestID(), ChecklistItemID: 1, Name: "Milk", Order: 1, Quantity: 1, CreatedAt: time.Now().UTC()},
	})

	if err := p.Histories().Delete(ctx, h.ID); err != nil {
		t.Fatalf("delete history: %v", err)
	}
	if _, err := p.Histories().GetByID(ctx, h.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get deleted history: err = %v, want ErrNotFound", err)
	}
	items, err := p.Histories().ListItems(ctx, h.ID)
	if err != nil {
		t.Fatalf("list items of deleted history: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected 0 items after cascade, got %d", len(items))
	}
}

package local

import (
	"context"
	"errors"
	"testing"

	"github.com/hollis/grocer/internal/database"
	"github.com/hollis/grocer/internal/store"
)

func TestDeleteReferencedItemRefused(t *testing.T) {
	p := setupTestProvider(t)
	ctx := context.Background()

	c := makeChecklist(t, p, "Weekly")
	a := makeItem(t, p, "Apples", 2)
	b := makeItem(t, p, "Bread", 3)
	m := makeItem(t, p, "Milk", 4)
	makeLine(t, p, c.ID, a.ID, 1, 1)
	makeLine(t, p, c.ID, b.ID, 2, 1)
	makeLine(t, p, c.ID, m.ID, 3, 1)

	// Removing a catalog item that a line still references must fail, not
	// cascade: cascading would leave the checklist with orders [1 3].
	err := p.Items().Delete(ctx, b.ID)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("delete referenced item: got %v, want ErrConflict", err)
	}

	lines, err := p.ChecklistItems().ListByChecklist(ctx, c.ID)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines after refused delete, got %d", len(lines))
	}
	for i, line := range lines {
		if line.Order != i+1 {
			t.Errorf("lines[%d].Order = %d, want %d", i, line.Order, i+1)
		}
	}
}

func TestDeleteUnreferencedItem(t *testing.T) {
	p := setupTestProvider(t)
	ctx := context.Background()

	i := makeItem(t, p, "Apples", 2)
	if err := p.Items().Delete(ctx, i.ID); err != nil {
		t.Fatalf("delete unreferenced item: %v", err)
	}
	if _, err := p.Items().GetByID(ctx, i.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get deleted item: got %v, want ErrNotFound", err)
	}
}

func TestDriverFailureReportsUnavailable(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	p := New(db)
	db.Close()

	if _, err := p.Checklists().List(context.Background()); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("list on closed db: got %v, want ErrUnavailable", err)
	}
	if _, err := p.Items().List(context.Background()); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("list items on closed db: got %v, want ErrUnavailable", err)
	}
}

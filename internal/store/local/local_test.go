package local

import (
	"context"
	"testing"
	"time"

	"github.com/hollis/grocer/internal/database"
	"github.com/hollis/grocer/internal/model"
)

func setupTestProvider(t *testing.T) *Provider {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

var testIDs int64 = 1000

func nextTestID() int64 {
	testIDs++
	return testIDs
}

func makeChecklist(t *testing.T, p *Provider, name string) *model.Checklist {
	t.Helper()
	now := time.Now().UTC()
	c := &model.Checklist{
		ID:        nextTestID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Checklists().Create(context.Background(), c); err != nil {
		t.Fatalf("create checklist: %v", err)
	}
	return c
}

func makeItem(t *testing.T, p *Provider, name string, price float64) *model.Item {
	t.Helper()
	now := time.Now().UTC()
	i := &model.Item{
		ID:        nextTestID(),
		Name:      name,
		Price:     price,
		Category:  "Pantry",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Items().Create(context.Background(), i); err != nil {
		t.Fatalf("create item: %v", err)
	}
	return i
}

func makeLine(t *testing.T, p *Provider, checklistID, itemID int64, order, quantity int) *model.ChecklistItem {
	t.Helper()
	now := time.Now().UTC()
	ci := &model.ChecklistItem{
		ID:          nextTestID(),
		ChecklistID: checklistID,
		ItemID:      itemID,
		Order:       order,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.ChecklistItems().Create(context.Background(), ci); err != nil {
		t.Fatalf("create checklist item: %v", err)
	}
	return ci
}

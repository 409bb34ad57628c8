// Package store defines the persistence contract shared by the local SQLite
// adapter and the remote object-store adapter, plus the router that decides
// which of the two serves a given call.
package store

import (
	"context"

	"github.com/hollis/grocer/internal/model"
)

// OrderAssignment is one row of a renumbering write: the checklist item and
// the 1-based position it should hold afterward.
type OrderAssignment struct {
	ChecklistItemID int64
	Order           int
}

// ChecklistStore persists checklists. Delete cascades to the checklist's
// items but never touches history snapshots.
type ChecklistStore interface {
	Create(ctx context.Context, c *model.Checklist) error
	GetByID(ctx context.Context, id int64) (*model.Checklist, error)
	List(ctx context.Context) ([]model.Checklist, error)
	Update(ctx context.Context, c *model.Checklist) error
	Delete(ctx context.Context, id int64) error
}

// ItemStore persists catalog items.
type ItemStore interface {
	Create(ctx context.Context, i *model.Item) error
	GetByID(ctx context.Context, id int64) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	Update(ctx context.Context, i *model.Item) error
	Delete(ctx context.Context, id int64) error
}

// ChecklistItemStore persists checklist lines. ListByChecklist returns lines
// in ascending Order.
//
// ReplaceOrders applies a renumbering in one shot. The local adapter runs it
// inside a single transaction; the remote adapter writes documents
// sequentially and stops at the first failure, in which case the caller must
// re-read to learn the actual state.
type ChecklistItemStore interface {
	Create(ctx context.Context, ci *model.ChecklistItem) error
	GetByID(ctx context.Context, id int64) (*model.ChecklistItem, error)
	ListByChecklist(ctx context.Context, checklistID int64) ([]model.ChecklistItem, error)
	Update(ctx context.Context, ci *model.ChecklistItem) error
	ReplaceOrders(ctx context.Context, checklistID int64, assignments []OrderAssignment) error
	Delete(ctx context.Context, id int64) error
}

// HistoryStore persists shopping-trip snapshots. Snapshots are written once
// at checkout and never mutated.
type HistoryStore interface {
	Create(ctx context.Context, h *model.History, items []model.HistoryItem) error
	GetByID(ctx context.Context, id int64) (*model.History, error)
	List(ctx context.Context) ([]model.History, error)
	ListItems(ctx context.Context, historyID int64) ([]model.HistoryItem, error)
	Delete(ctx context.Context, id int64) error
}

// StatsStore serves read-only aggregates over the same backend. Empty inputs
// yield zero, never an error or a null.
type StatsStore interface {
	ItemCount(ctx context.Context, checklistID int64) (int, error)
	ChecklistTotal(ctx context.Context, checklistID int64) (float64, error)
	HistoryCheckedTotal(ctx context.Context, historyID int64) (float64, error)
	CategoryMonthTotals(ctx context.Context) ([]model.CategoryMonthTotal, error)
}

// Provider bundles the per-entity stores of one backend.
type Provider interface {
	Checklists() ChecklistStore
	Items() ItemStore
	ChecklistItems() ChecklistItemStore
	Histories() HistoryStore
	Stats() StatsStore
}

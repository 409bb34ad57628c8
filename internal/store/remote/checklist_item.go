package remote

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/store"
)

const checklistItemEntity = "checklist_item"

type ChecklistItemStore struct {
	p *Provider
}

func (s *ChecklistItemStore) Create(ctx context.Context, ci *model.ChecklistItem) error {
	return s.p.putDoc(ctx, s.p.key(checklistItemEntity, ci.ID), ci)
}

func (s *ChecklistItemStore) GetByID(ctx context.Context, id int64) (*model.ChecklistItem, error) {
	var ci model.ChecklistItem
	if err := s.p.getDoc(ctx, s.p.key(checklistItemEntity, id), &ci); err != nil {
		return nil, err
	}
	return &ci, nil
}

func (s *ChecklistItemStore) listAll(ctx context.Context) ([]model.ChecklistItem, error) {
	keys, err := s.p.listKeys(ctx, s.p.prefix(checklistItemEntity))
	if err != nil {
		return nil, err
	}

	all := make([]model.ChecklistItem, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			return s.p.getDoc(gctx, key, &all[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	return all, nil
}

func (s *ChecklistItemStore) ListByChecklist(ctx context.Context, checklistID int64) ([]model.ChecklistItem, error) {
	all, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	var lines []model.ChecklistItem
	for _, ci := range all {
		if ci.ChecklistID == checklistID {
			lines = append(lines, ci)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Order < lines[j].Order })
	return lines, nil
}

func (s *ChecklistItemStore) Update(ctx context.Context, ci *model.ChecklistItem) error {
	key := s.p.key(checklistItemEntity, ci.ID)
	var existing model.ChecklistItem
	if err := s.p.getDoc(ctx, key, &existing); err != nil {
		return err
	}
	return s.p.putDoc(ctx, key, ci)
}

// ReplaceOrders rewrites the affected line documents one by one. Object
// stores offer no multi-key transaction, so a failure partway leaves the
// earlier writes in place; the error tells the caller to re-read.
func (s *ChecklistItemStore) ReplaceOrders(ctx context.Context, checklistID int64, assignments []store.OrderAssignment) error {
	for _, a := range assignments {
		key := s.p.key(checklistItemEntity, a.ChecklistItemID)
		var ci model.ChecklistItem
		if err := s.p.getDoc(ctx, key, &ci); err != nil {
			return fmt.Errorf("renumber item %d: %w", a.ChecklistItemID, err)
		}
		if ci.ChecklistID != checklistID {
			return fmt.Errorf("renumber item %d: %w", a.ChecklistItemID, store.ErrNotFound)
		}
		if ci.Order == a.Order {
			continue
		}
		ci.Order = a.Order
		if err := s.p.putDoc(ctx, key, &ci); err != nil {
			return fmt.Errorf("renumber item %d: %w", a.ChecklistItemID, err)
		}
	}
	return nil
}

func (s *ChecklistItemStore) Delete(ctx context.Context, id int64) error {
	return s.p.deleteDoc(ctx, s.p.key(checklistItemEntity, id))
}

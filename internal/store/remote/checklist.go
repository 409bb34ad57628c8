package remote

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/hollis/grocer/internal/model"
)

const checklistEntity = "checklist"

type ChecklistStore struct {
	p *Provider
}

func (s *ChecklistStore) Create(ctx context.Context, c *model.Checklist) error {
	return s.p.putDoc(ctx, s.p.key(checklistEntity, c.ID), c)
}

func (s *ChecklistStore) GetByID(ctx context.Context, id int64) (*model.Checklist, error) {
	var c model.Checklist
	if err := s.p.getDoc(ctx, s.p.key(checklistEntity, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChecklistStore) List(ctx context.Context) ([]model.Checklist, error) {
	keys, err := s.p.listKeys(ctx, s.p.prefix(checklistEntity))
	if err != nil {
		return nil, err
	}

	checklists := make([]model.Checklist, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			return s.p.getDoc(gctx, key, &checklists[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list checklists: %w", err)
	}

	sort.Slice(checklists, func(i, j int) bool {
		if checklists[i].CreatedAt.Equal(checklists[j].CreatedAt) {
			return checklists[i].ID < checklists[j].ID
		}
		return checklists[i].CreatedAt.Before(checklists[j].CreatedAt)
	})
	return checklists, nil
}

func (s *ChecklistStore) Update(ctx context.Context, c *model.Checklist) error {
	key := s.p.key(checklistEntity, c.ID)
	var existing model.Checklist
	if err := s.p.getDoc(ctx, key, &existing); err != nil {
		return err
	}
	return s.p.putDoc(ctx, key, c)
}

// Delete removes the checklist and all of its line documents. Line deletes
// are attempted even after individual failures; the combined error reports
// every line that could not be removed.
func (s *ChecklistStore) Delete(ctx context.Context, id int64) error {
	if err := s.p.deleteDoc(ctx, s.p.key(checklistEntity, id)); err != nil {
		return err
	}

	lines, err := (&ChecklistItemStore{s.p}).ListByChecklist(ctx, id)
	if err != nil {
		return fmt.Errorf("cascade checklist %d: %w", id, err)
	}

	var mu sync.Mutex
	var errs error
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, line := range lines {
		g.Go(func() error {
			if err := s.p.deleteDoc(gctx, s.p.key(checklistItemEntity, line.ID)); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("cascade line %d: %w", line.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errs
}

package remote

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/store"
)

const itemEntity = "item"

type ItemStore struct {
	p *Provider
}

func (s *ItemStore) Create(ctx context.Context, i *model.Item) error {
	return s.p.putDoc(ctx, s.p.key(itemEntity, i.ID), i)
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	var i model.Item
	if err := s.p.getDoc(ctx, s.p.key(itemEntity, id), &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *ItemStore) List(ctx context.Context) ([]model.Item, error) {
	keys, err := s.p.listKeys(ctx, s.p.prefix(itemEntity))
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			return s.p.getDoc(gctx, key, &items[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name == items[j].Name {
			return items[i].ID < items[j].ID
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *ItemStore) Update(ctx context.Context, i *model.Item) error {
	key := s.p.key(itemEntity, i.ID)
	var existing model.Item
	if err := s.p.getDoc(ctx, key, &existing); err != nil {
		return err
	}
	return s.p.putDoc(ctx, key, i)
}

// Delete refuses to remove an item that still appears on a checklist, the
// same contract the relational backend enforces with ON DELETE RESTRICT.
func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	lines, err := (&ChecklistItemStore{s.p}).listAll(ctx)
	if err != nil {
		return err
	}
	for _, ci := range lines {
		if ci.ItemID == id {
			return fmt.Errorf("delete item %d: %w", id, store.ErrConflict)
		}
	}
	return s.p.deleteDoc(ctx, s.p.key(itemEntity, id))
}

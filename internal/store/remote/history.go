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

const (
	historyEntity     = "history"
	historyItemEntity = "history_item"
)

type HistoryStore struct {
	p *Provider
}

// Create writes the snapshot header first, then the frozen lines
// sequentially. Lines carry the snapshot id, so a partial failure leaves a
// readable (if incomplete) snapshot rather than orphaned documents.
func (s *HistoryStore) Create(ctx context.Context, h *model.History, items []model.HistoryItem) error {
	if err := s.p.putDoc(ctx, s.p.key(historyEntity, h.ID), h); err != nil {
		return err
	}
	for _, hi := range items {
		if err := s.p.putDoc(ctx, s.p.key(historyItemEntity, hi.ID), &hi); err != nil {
			return fmt.Errorf("snapshot line %d: %w", hi.ID, err)
		}
	}
	return nil
}

func (s *HistoryStore) GetByID(ctx context.Context, id int64) (*model.History, error) {
	var h model.History
	if err := s.p.getDoc(ctx, s.p.key(historyEntity, id), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *HistoryStore) List(ctx context.Context) ([]model.History, error) {
	keys, err := s.p.listKeys(ctx, s.p.prefix(historyEntity))
	if err != nil {
		return nil, err
	}

	histories := make([]model.History, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			return s.p.getDoc(gctx, key, &histories[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}

	sort.Slice(histories, func(i, j int) bool {
		if histories[i].CreatedAt.Equal(histories[j].CreatedAt) {
			return histories[i].ID > histories[j].ID
		}
		return histories[i].CreatedAt.After(histories[j].CreatedAt)
	})
	return histories, nil
}

func (s *HistoryStore) ListItems(ctx context.Context, historyID int64) ([]model.HistoryItem, error) {
	all, err := s.listAllItems(ctx)
	if err != nil {
		return nil, err
	}

	var items []model.HistoryItem
	for _, hi := range all {
		if hi.HistoryID == historyID {
			items = append(items, hi)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	return items, nil
}

func (s *HistoryStore) listAllItems(ctx context.Context) ([]model.HistoryItem, error) {
	keys, err := s.p.listKeys(ctx, s.p.prefix(historyItemEntity))
	if err != nil {
		return nil, err
	}

	items := make([]model.HistoryItem, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			return s.p.getDoc(gctx, key, &items[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list history items: %w", err)
	}
	return items, nil
}

func (s *HistoryStore) Delete(ctx context.Context, id int64) error {
	if err := s.p.deleteDoc(ctx, s.p.key(historyEntity, id)); err != nil {
		return err
	}

	items, err := s.ListItems(ctx, id)
	if err != nil {
		return fmt.Errorf("cascade history %d: %w", id, err)
	}

	var mu sync.Mutex
	var errs error
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, hi := range items {
		g.Go(func() error {
			if err := s.p.deleteDoc(gctx, s.p.key(historyItemEntity, hi.ID)); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("cascade history line %d: %w", hi.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errs
}

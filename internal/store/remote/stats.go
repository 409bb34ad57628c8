package remote

import (
	"context"
	"sort"

	"github.com/hollis/grocer/internal/model"
)

// StatsStore computes aggregates client-side from the user's documents.
// The object store has no query engine, so sums are folded over the same
// listings the CRUD stores use; results therefore always reflect this
// backend's data only.
type StatsStore struct {
	p *Provider
}

func (s *StatsStore) ItemCount(ctx context.Context, checklistID int64) (int, error) {
	lines, err := (&ChecklistItemStore{s.p}).ListByChecklist(ctx, checklistID)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

func (s *StatsStore) ChecklistTotal(ctx context.Context, checklistID int64) (float64, error) {
	lines, err := (&ChecklistItemStore{s.p}).ListByChecklist(ctx, checklistID)
	if err != nil {
		return 0, err
	}

	var total float64
	items := &ItemStore{s.p}
	for _, line := range lines {
		item, err := items.GetByID(ctx, line.ItemID)
		if err != nil {
			return 0, err
		}
		total += item.Price * float64(line.Quantity)
	}
	return total, nil
}

func (s *StatsStore) HistoryCheckedTotal(ctx context.Context, historyID int64) (float64, error) {
	items, err := (&HistoryStore{s.p}).ListItems(ctx, historyID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, hi := range items {
		if hi.IsChecked {
			total += hi.Price * float64(hi.Quantity)
		}
	}
	return total, nil
}

func (s *StatsStore) CategoryMonthTotals(ctx context.Context) ([]model.CategoryMonthTotal, error) {
	items, err := (&HistoryStore{s.p}).listAllItems(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		category string
		month    string
	}
	sums := make(map[bucket]float64)
	for _, hi := range items {
		if !hi.IsChecked {
			continue
		}
		b := bucket{category: hi.Category, month: hi.CreatedAt.Format("2006-01")}
		sums[b] += hi.Price * float64(hi.Quantity)
	}

	totals := make([]model.CategoryMonthTotal, 0, len(sums))
	for b, total := range sums {
		totals = append(totals, model.CategoryMonthTotal{
			Category: b.category,
			Month:    b.month,
			Total:    total,
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Month == totals[j].Month {
			return totals[i].Category < totals[j].Category
		}
		return totals[i].Month < totals[j].Month
	})
	return totals, nil
}

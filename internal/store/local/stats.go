package local

import (
	"context"
	"database/sql"

	"github.com/hollis/grocer/internal/model"
)

type StatsStore struct {
	db *sql.DB
}

func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) ItemCount(ctx context.Context, checklistID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM checklist_item WHERE checklist_id = ?`,
		checklistID,
	).Scan(&count)
	if err != nil {
		return 0, driverErr("item count", err)
	}
	return count, nil
}

func (s *StatsStore) ChecklistTotal(ctx context.Context, checklistID int64) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(i.price * ci.quantity), 0)
		 FROM checklist_item ci
		 JOIN item i ON i.id = ci.item_id
		 WHERE ci.checklist_id = ?`,
		checklistID,
	).Scan(&total)
	if err != nil {
		return 0, driverErr("checklist total", err)
	}
	return total, nil
}

func (s *StatsStore) HistoryCheckedTotal(ctx context.Context, historyID int64) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(price * quantity), 0)
		 FROM history_item
		 WHERE history_id = ? AND is_checked = 1`,
		historyID,
	).Scan(&total)
	if err != nil {
		return 0, driverErr("history checked total", err)
	}
	return total, nil
}

// CategoryMonthTotals sums checked history spending per category per month.
func (s *StatsStore) CategoryMonthTotals(ctx context.Context) ([]model.CategoryMonthTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, strftime('%Y-%m', created_at), SUM(price * quantity)
		 FROM history_item
		 WHERE is_checked = 1
		 GROUP BY category, strftime('%Y-%m', created_at)
		 ORDER BY 2 ASC, 1 ASC`,
	)
	if err != nil {
		return nil, driverErr("category month totals", err)
	}
	defer rows.Close()

	var totals []model.CategoryMonthTotal
	for rows.Next() {
		var t model.CategoryMonthTotal
		if err := rows.Scan(&t.Category, &t.Month, &t.Total); err != nil {
			return nil, driverErr("scan category total", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

package local

import (
	"context"
	"database/sql"

	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/store"
)

type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func scanHistory(scanner interface{ Scan(...any) error }) (*model.History, error) {
	var h model.History
	err := scanner.Scan(&h.ID, &h.ChecklistID, &h.Name, &h.Description, &h.Icon, &h.Color, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func scanHistoryItem(scanner interface{ Scan(...any) error }) (*model.HistoryItem, error) {
	var hi model.HistoryItem
	var checked int
	err := scanner.Scan(
		&hi.ID, &hi.HistoryID, &hi.ChecklistItemID, &hi.Name, &hi.Price,
		&hi.Category, &hi.MeasureType, &hi.MeasureValue, &hi.PhotoRef,
		&hi.Order, &hi.Quantity, &checked, &hi.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	hi.IsChecked = checked != 0
	return &hi, nil
}

const historyCols = `id, checklist_id, name, description, icon, color, created_at`
const historyItemCols = `id, history_id, checklist_item_id, name, price, category, measure_type, measure_value, photo_ref, "order", quantity, is_checked, created_at`

// Create writes the snapshot header and all frozen lines in one transaction.
func (s *HistoryStore) Create(ctx context.Context, h *model.History, items []model.HistoryItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return driverErr("begin snapshot", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history (`+historyCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.ChecklistID, h.Name, h.Description, h.Icon, h.Color, h.CreatedAt,
	)
	if err != nil {
		return driverErr("insert history", err)
	}

	for _, hi := range items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO history_item (`+historyItemCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			hi.ID, hi.HistoryID, hi.ChecklistItemID, hi.Name, hi.Price,
			hi.Category, hi.MeasureType, hi.MeasureValue, hi.PhotoRef,
			hi.Order, hi.Quantity, boolInt(hi.IsChecked), hi.CreatedAt,
		)
		if err != nil {
			return driverErr("insert history item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return driverErr("commit snapshot", err)
	}
	return nil
}

func (s *HistoryStore) GetByID(ctx context.Context, id int64) (*model.History, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+historyCols+` FROM history WHERE id = ?`, id)
	h, err := scanHistory(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, driverErr("get history", err)
	}
	return h, nil
}

func (s *HistoryStore) List(ctx context.Context) ([]model.History, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+historyCols+` FROM history ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, driverErr("list histories", err)
	}
	defer rows.Close()

	var histories []model.History
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, driverErr("scan history", err)
		}
		histories = append(histories, *h)
	}
	return histories, rows.Err()
}

func (s *HistoryStore) ListItems(ctx context.Context, historyID int64) ([]model.HistoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+historyItemCols+` FROM history_item WHERE history_id = ? ORDER BY "order" ASC`,
		historyID,
	)
	if err != nil {
		return nil, driverErr("list history items", err)
	}
	defer rows.Close()

	var items []model.HistoryItem
	for rows.Next() {
		hi, err := scanHistoryItem(rows)
		if err != nil {
			return nil, driverErr("scan history item", err)
		}
		items = append(items, *hi)
	}
	return items, rows.Err()
}

func (s *HistoryStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return driverErr("delete history", err)
	}
	return requireRow(result, "delete history")
}

package local

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/store"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var i model.Item
	err := scanner.Scan(
		&i.ID, &i.Name, &i.Price, &i.Category,
		&i.MeasureType, &i.MeasureValue, &i.PhotoRef,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const itemCols = `id, name, price, category, measure_type, measure_value, photo_ref, created_at, updated_at`

func (s *ItemStore) Create(ctx context.Context, i *model.Item) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO item (`+itemCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.Name, i.Price, i.Category,
		i.MeasureType, i.MeasureValue, i.PhotoRef,
		i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return driverErr("insert item", err)
	}
	return nil
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM item WHERE id = ?`, id)
	i, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, driverErr("get item", err)
	}
	return i, nil
}

func (s *ItemStore) List(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemCols+` FROM item ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, driverErr("list items", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, driverErr("scan item", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

func (s *ItemStore) Update(ctx context.Context, i *model.Item) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE item SET name = ?, price = ?, category = ?, measure_type = ?, measure_value = ?, photo_ref = ?, updated_at = ? WHERE id = ?`,
		i.Name, i.Price, i.Category, i.MeasureType, i.MeasureValue, i.PhotoRef, i.UpdatedAt, i.ID,
	)
	if err != nil {
		return driverErr("update item", err)
	}
	return requireRow(result, "update item")
}

// Delete refuses to remove an item that still appears on a checklist. The
// schema enforces this with ON DELETE RESTRICT; cascading here would punch
// holes in the referencing checklist's order sequence.
func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM item WHERE id = ?`, id)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint") {
			return fmt.Errorf("delete item %d: %w", id, store.ErrConflict)
		}
		return driverErr("delete item", err)
	}
	return requireRow(result, "delete item")
}

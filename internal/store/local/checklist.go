package local

import (
	"context"
	"database/sql"
	"time"

	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/store"
)

type ChecklistStore struct {
	db *sql.DB
}

func NewChecklistStore(db *sql.DB) *ChecklistStore {
	return &ChecklistStore{db: db}
}

func scanChecklist(scanner interface{ Scan(...any) error }) (*model.Checklist, error) {
	var c model.Checklist
	var openedAt, shopAt sql.NullTime
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color,
		&c.CreatedAt, &c.UpdatedAt, &openedAt, &shopAt,
	)
	if err != nil {
		return nil, err
	}
	if openedAt.Valid {
		c.LastOpenedAt = &openedAt.Time
	}
	if shopAt.Valid {
		c.LastShopAt = &shopAt.Time
	}
	return &c, nil
}

const checklistCols = `id, name, description, icon, color, created_at, updated_at, last_opened_at, last_shop_at`

func (s *ChecklistStore) Create(ctx context.Context, c *model.Checklist) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checklist (`+checklistCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Icon, c.Color,
		c.CreatedAt, c.UpdatedAt, nullTime(c.LastOpenedAt), nullTime(c.LastShopAt),
	)
	if err != nil {
		return driverErr("insert checklist", err)
	}
	return nil
}

func (s *ChecklistStore) GetByID(ctx context.Context, id int64) (*model.Checklist, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+checklistCols+` FROM checklist WHERE id = ?`, id)
	c, err := scanChecklist(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, driverErr("get checklist", err)
	}
	return c, nil
}

func (s *ChecklistStore) List(ctx context.Context) ([]model.Checklist, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+checklistCols+` FROM checklist ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, driverErr("list checklists", err)
	}
	defer rows.Close()

	var checklists []model.Checklist
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			return nil, driverErr("scan checklist", err)
		}
		checklists = append(checklists, *c)
	}
	return checklists, rows.Err()
}

func (s *ChecklistStore) Update(ctx context.Context, c *model.Checklist) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE checklist SET name = ?, description = ?, icon = ?, color = ?, updated_at = ?, last_opened_at = ?, last_shop_at = ? WHERE id = ?`,
		c.Name, c.Description, c.Icon, c.Color,
		c.UpdatedAt, nullTime(c.LastOpenedAt), nullTime(c.LastShopAt), c.ID,
	)
	if err != nil {
		return driverErr("update checklist", err)
	}
	return requireRow(result, "update checklist")
}

func (s *ChecklistStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM checklist WHERE id = ?`, id)
	if err != nil {
		return driverErr("delete checklist", err)
	}
	return requireRow(result, "delete checklist")
}

// requireRow maps zero affected rows to ErrNotFound so updates and deletes
// of missing ids behave the same on both backends.
func requireRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return driverErr(op+": rows affected", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

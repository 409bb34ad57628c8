package local

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/store"
)

type ChecklistItemStore struct {
	db *sql.DB
}

func NewChecklistItemStore(db *sql.DB) *ChecklistItemStore {
	return &ChecklistItemStore{db: db}
}

func scanChecklistItem(scanner interface{ Scan(...any) error }) (*model.ChecklistItem, error) {
	var ci model.ChecklistItem
	var checked int
	err := scanner.Scan(
		&ci.ID, &ci.ChecklistID, &ci.ItemID, &ci.Order, &ci.Quantity,
		&checked, &ci.CreatedAt, &ci.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ci.Checked = checked != 0
	return &ci, nil
}

const checklistItemCols = `id, checklist_id, item_id, "order", quantity, checked, created_at, updated_at`

func (s *ChecklistItemStore) Create(ctx context.Context, ci *model.ChecklistItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checklist_item (`+checklistItemCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ci.ID, ci.ChecklistID, ci.ItemID, ci.Order, ci.Quantity,
		boolInt(ci.Checked), ci.CreatedAt, ci.UpdatedAt,
	)
	if err != nil {
		return driverErr("insert checklist item", err)
	}
	return nil
}

func (s *ChecklistItemStore) GetByID(ctx context.Context, id int64) (*model.ChecklistItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+checklistItemCols+` FROM checklist_item WHERE id = ?`, id)
	ci, err := scanChecklistItem(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, driverErr("get checklist item", err)
	}
	return ci, nil
}

func (s *ChecklistItemStore) ListByChecklist(ctx context.Context, checklistID int64) ([]model.ChecklistItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+checklistItemCols+` FROM checklist_item WHERE checklist_id = ? ORDER BY "order" ASC`,
		checklistID,
	)
	if err != nil {
		return nil, driverErr("list checklist items", err)
	}
	defer rows.Close()

	var items []model.ChecklistItem
	for rows.Next() {
		ci, err := scanChecklistItem(rows)
		if err != nil {
			return nil, driverErr("scan checklist item", err)
		}
		items = append(items, *ci)
	}
	return items, rows.Err()
}

func (s *ChecklistItemStore) Update(ctx context.Context, ci *model.ChecklistItem) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE checklist_item SET item_id = ?, "order" = ?, quantity = ?, checked = ?, updated_at = ? WHERE id = ?`,
		ci.ItemID, ci.Order, ci.Quantity, boolInt(ci.Checked), ci.UpdatedAt, ci.ID,
	)
	if err != nil {
		return driverErr("update checklist item", err)
	}
	return requireRow(result, "update checklist item")
}

// ReplaceOrders writes a whole renumbering in one transaction, so a
// concurrent reader never observes a checklist with a gap or a duplicate
// position.
func (s *ChecklistItemStore) ReplaceOrders(ctx context.Context, checklistID int64, assignments []store.OrderAssignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return driverErr("begin renumber", err)
	}
	defer tx.Rollback()

	for _, a := range assignments {
		result, err := tx.ExecContext(ctx,
			`UPDATE checklist_item SET "order" = ? WHERE id = ? AND checklist_id = ?`,
			a.Order, a.ChecklistItemID, checklistID,
		)
		if err != nil {
			return driverErr(fmt.Sprintf("renumber item %d", a.ChecklistItemID), err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return driverErr(fmt.Sprintf("renumber item %d: rows affected", a.ChecklistItemID), err)
		}
		if n == 0 {
			return fmt.Errorf("renumber item %d: %w", a.ChecklistItemID, store.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return driverErr("commit renumber", err)
	}
	return nil
}

func (s *ChecklistItemStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM checklist_item WHERE id = ?`, id)
	if err != nil {
		return driverErr("delete checklist item", err)
	}
	return requireRow(result, "delete checklist item")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package local implements the store contract against the embedded SQLite
// database.
package local

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hollis/grocer/internal/store"
)

// Provider bundles the SQLite-backed stores over one database handle.
type Provider struct {
	checklists     *ChecklistStore
	items          *ItemStore
	checklistItems *ChecklistItemStore
	histories      *HistoryStore
	stats          *StatsStore
}

func New(db *sql.DB) *Provider {
	return &Provider{
		checklists:     NewChecklistStore(db),
		items:          NewItemStore(db),
		checklistItems: NewChecklistItemStore(db),
		histories:      NewHistoryStore(db),
		stats:          NewStatsStore(db),
	}
}

// driverErr tags a database failure as store-unavailable while keeping the
// cause matchable, mirroring the remote adapter's taxonomy.
func driverErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(store.ErrUnavailable, err))
}

func (p *Provider) Checklists() store.ChecklistStore         { return p.checklists }
func (p *Provider) Items() store.ItemStore                   { return p.items }
func (p *Provider) ChecklistItems() store.ChecklistItemStore { return p.checklistItems }
func (p *Provider) Histories() store.HistoryStore            { return p.histories }
func (p *Provider) Stats() store.StatsStore                  { return p.stats }

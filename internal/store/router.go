package store

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/session"
)

// RemoteFactory builds a remote provider scoped to one authenticated user.
type RemoteFactory func(userID string) Provider

// Router directs every store call to the currently active backend. The
// active provider is re-evaluated whenever the session broker emits: a
// trusted session selects the remote backend, anything else the local one.
//
// Router itself implements Provider; the stores it hands out read the active
// provider on every call. Callers that need a reference bound to one backend
// for a whole sequence of calls take a Snapshot instead.
type Router struct {
	local  Provider
	remote RemoteFactory
	active atomic.Pointer[providerBox]
	logger *slog.Logger
}

// providerBox exists because atomic.Pointer needs a concrete type.
type providerBox struct {
	p Provider
}

// NewRouter creates a router serving the local backend and subscribes it to
// the broker. remote may be nil when no remote store is configured; trusted
// sessions then stay on the local backend.
func NewRouter(local Provider, remote RemoteFactory, broker *session.Broker, logger *slog.Logger) *Router {
	r := &Router{
		local:  local,
		remote: remote,
		logger: logger,
	}
	r.active.Store(&providerBox{p: local})
	if broker != nil {
		broker.Watch(r.Apply)
	}
	return r
}

// Apply switches the active backend for the given session. The swap is a
// single pointer store: in-flight calls that already loaded a provider keep
// using it and are not redirected.
func (r *Router) Apply(s session.Session) {
	if s.Trusted() && r.remote != nil {
		r.active.Store(&providerBox{p: r.remote(s.UserID)})
		r.logger.Info("backend switched", "backend", "remote", "user", s.UserID)
		return
	}
	if s.Trusted() {
		r.logger.Warn("trusted session but no remote store configured, staying local")
	}
	r.active.Store(&providerBox{p: r.local})
	r.logger.Info("backend switched", "backend", "local")
}

// Snapshot returns the provider that is active right now. The reference
// stays bound to that backend even if the router switches afterward.
func (r *Router) Snapshot() Provider {
	return r.active.Load().p
}

func (r *Router) Checklists() ChecklistStore         { return routedChecklists{r} }
func (r *Router) Items() ItemStore                   { return routedItems{r} }
func (r *Router) ChecklistItems() ChecklistItemStore { return routedChecklistItems{r} }
func (r *Router) Histories() HistoryStore            { return routedHistories{r} }
func (r *Router) Stats() StatsStore                  { return routedStats{r} }

// The routed types carry no state of their own: every method re-reads the
// active provider and delegates the call unmodified.

type routedChecklists struct{ r *Router }

func (s routedChecklists) Create(ctx context.Context, c *model.Checklist) error {
	return s.r.Snapshot().Checklists().Create(ctx, c)
}

func (s routedChecklists) GetByID(ctx context.Context, id int64) (*model.Checklist, error) {
	return s.r.Snapshot().Checklists().GetByID(ctx, id)
}

func (s routedChecklists) List(ctx context.Context) ([]model.Checklist, error) {
	return s.r.Snapshot().Checklists().List(ctx)
}

func (s routedChecklists) Update(ctx context.Context, c *model.Checklist) error {
	return s.r.Snapshot().Checklists().Update(ctx, c)
}

func (s routedChecklists) Delete(ctx context.Context, id int64) error {
	return s.r.Snapshot().Checklists().Delete(ctx, id)
}

type routedItems struct{ r *Router }

func (s routedItems) Create(ctx context.Context, i *model.Item) error {
	return s.r.Snapshot().Items().Create(ctx, i)
}

func (s routedItems) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	return s.r.Snapshot().Items().GetByID(ctx, id)
}

func (s routedItems) List(ctx context.Context) ([]model.Item, error) {
	return s.r.Snapshot().Items().List(ctx)
}

func (s routedItems) Update(ctx context.Context, i *model.Item) error {
	return s.r.Snapshot().Items().Update(ctx, i)
}

func (s routedItems) Delete(ctx context.Context, id int64) error {
	return s.r.Snapshot().Items().Delete(ctx, id)
}

type routedChecklistItems struct{ r *Router }

func (s routedChecklistItems) Create(ctx context.Context, ci *model.ChecklistItem) error {
	return s.r.Snapshot().ChecklistItems().Create(ctx, ci)
}

func (s routedChecklistItems) GetByID(ctx context.Context, id int64) (*model.ChecklistItem, error) {
	return s.r.Snapshot().ChecklistItems().GetByID(ctx, id)
}

func (s routedChecklistItems) ListByChecklist(ctx context.Context, checklistID int64) ([]model.ChecklistItem, error) {
	return s.r.Snapshot().ChecklistItems().ListByChecklist(ctx, checklistID)
}

func (s routedChecklistItems) Update(ctx context.Context, ci *model.ChecklistItem) error {
	return s.r.Snapshot().ChecklistItems().Update(ctx, ci)
}

func (s routedChecklistItems) ReplaceOrders(ctx context.Context, checklistID int64, assignments []OrderAssignment) error {
	return s.r.Snapshot().ChecklistItems().ReplaceOrders(ctx, checklistID, assignments)
}

func (s routedChecklistItems) Delete(ctx context.Context, id int64) error {
	return s.r.Snapshot().ChecklistItems().Delete(ctx, id)
}

type routedHistories struct{ r *Router }

func (s routedHistories) Create(ctx context.Context, h *model.History, items []model.HistoryItem) error {
	return s.r.Snapshot().Histories().Create(ctx, h, items)
}

func (s routedHistories) GetByID(ctx context.Context, id int64) (*model.History, error) {
	return s.r.Snapshot().Histories().GetByID(ctx, id)
}

func (s routedHistories) List(ctx context.Context) ([]model.History, error) {
	return s.r.Snapshot().Histories().List(ctx)
}

func (s routedHistories) ListItems(ctx context.Context, historyID int64) ([]model.HistoryItem, error) {
	return s.r.Snapshot().Histories().ListItems(ctx, historyID)
}

func (s routedHistories) Delete(ctx context.Context, id int64) error {
	return s.r.Snapshot().Histories().Delete(ctx, id)
}

type routedStats struct{ r *Router }

func (s routedStats) ItemCount(ctx context.Context, checklistID int64) (int, error) {
	return s.r.Snapshot().Stats().ItemCount(ctx, checklistID)
}

func (s routedStats) ChecklistTotal(ctx context.Context, checklistID int64) (float64, error) {
	return s.r.Snapshot().Stats().ChecklistTotal(ctx, checklistID)
}

func (s routedStats) HistoryCheckedTotal(ctx context.Context, historyID int64) (float64, error) {
	return s.r.Snapshot().Stats().HistoryCheckedTotal(ctx, historyID)
}

func (s routedStats) CategoryMonthTotals(ctx context.Context) ([]model.CategoryMonthTotal, error) {
	return s.r.Snapshot().Stats().CategoryMonthTotals(ctx)
}

package store

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/session"
)

// stubProvider records its backend name in every checklist it returns, so
// tests can tell which backend served a call.
type stubProvider struct {
	name string
}

func (p *stubProvider) Checklists() ChecklistStore         { return stubChecklists{p.name} }
func (p *stubProvider) Items() ItemStore                   { return stubItems{} }
func (p *stubProvider) ChecklistItems() ChecklistItemStore { return stubChecklistItems{} }
func (p *stubProvider) Histories() HistoryStore            { return stubHistories{} }
func (p *stubProvider) Stats() StatsStore                  { return stubStats{} }

type stubChecklists struct{ backend string }

func (s stubChecklists) Create(context.Context, *model.Checklist) error { return nil }
func (s stubChecklists) GetByID(context.Context, int64) (*model.Checklist, error) {
	return &model.Checklist{Name: s.backend}, nil
}
func (s stubChecklists) List(context.Context) ([]model.Checklist, error) {
	return []model.Checklist{{Name: s.backend}}, nil
}
func (s stubChecklists) Update(context.Context, *model.Checklist) error { return nil }
func (s stubChecklists) Delete(context.Context, int64) error            { return nil }

type stubItems struct{}

func (stubItems) Create(context.Context, *model.Item) error            { return nil }
func (stubItems) GetByID(context.Context, int64) (*model.Item, error)  { return nil, ErrNotFound }
func (stubItems) List(context.Context) ([]model.Item, error)           { return nil, nil }
func (stubItems) Update(context.Context, *model.Item) error            { return nil }
func (stubItems) Delete(context.Context, int64) error                  { return nil }

type stubChecklistItems struct{}

func (stubChecklistItems) Create(context.Context, *model.ChecklistItem) error { return nil }
func (stubChecklistItems) GetByID(context.Context, int64) (*model.ChecklistItem, error) {
	return nil, ErrNotFound
}
func (stubChecklistItems) ListByChecklist(context.Context, int64) ([]model.ChecklistItem, error) {
	return nil, nil
}
func (stubChecklistItems) Update(context.Context, *model.ChecklistItem) error { return nil }
func (stubChecklistItems) ReplaceOrders(context.Context, int64, []OrderAssignment) error {
	return nil
}
func (stubChecklistItems) Delete(context.Context, int64) error { return nil }

type stubHistories struct{}

func (stubHistories) Create(context.Context, *model.History, []model.HistoryItem) error { return nil }
func (stubHistories) GetByID(context.Context, int64) (*model.History, error) {
	return nil, ErrNotFound
}
func (stubHistories) List(context.Context) ([]model.History, error)               { return nil, nil }
func (stubHistories) ListItems(context.Context, int64) ([]model.HistoryItem, error) { return nil, nil }
func (stubHistories) Delete(context.Context, int64) error                         { return nil }

type stubStats struct{}

func (stubStats) ItemCount(context.Context, int64) (int, error)           { return 0, nil }
func (stubStats) ChecklistTotal(context.Context, int64) (float64, error)  { return 0, nil }
func (stubStats) HistoryCheckedTotal(context.Context, int64) (float64, error) {
	return 0, nil
}
func (stubStats) CategoryMonthTotals(context.Context) ([]model.CategoryMonthTotal, error) {
	return nil, nil
}

func servedBy(t *testing.T, s ChecklistStore) string {
	t.Helper()
	lists, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return lists[0].Name
}

func TestRouterFollowsSession(t *testing.T) {
	local := &stubProvider{name: "local"}
	broker := session.NewBroker()
	router := NewRouter(local, func(userID string) Provider {
		return &stubProvider{name: "remote:" + userID}
	}, broker, slog.Default())

	checklists := router.Checklists()

	if got := servedBy(t, checklists); got != "local" {
		t.Fatalf("anonymous session served by %q, want local", got)
	}

	broker.Set(session.Session{UserID: "u1", Authenticated: true})

	if got := servedBy(t, checklists); got != "remote:u1" {
		t.Fatalf("trusted session served by %q, want remote:u1", got)
	}

	broker.Set(session.Anonymous())

	if got := servedBy(t, checklists); got != "local" {
		t.Fatalf("after sign-out served by %q, want local", got)
	}
}

func TestSnapshotStaysBound(t *testing.T) {
	local := &stubProvider{name: "local"}
	broker := session.NewBroker()
	router := NewRouter(local, func(userID string) Provider {
		return &stubProvider{name: "remote"}
	}, broker, slog.Default())

	before := router.Snapshot()

	broker.Set(session.Session{UserID: "u1", Authenticated: true})

	// The snapshot taken before the switch keeps serving from local.
	if got := servedBy(t, before.Checklists()); got != "local" {
		t.Errorf("snapshot served by %q, want local", got)
	}
	// The router itself has moved on.
	if got := servedBy(t, router.Checklists()); got != "remote" {
		t.Errorf("router served by %q, want remote", got)
	}
}

func TestRouterWithoutRemoteStaysLocal(t *testing.T) {
	local := &stubProvider{name: "local"}
	broker := session.NewBroker()
	router := NewRouter(local, nil, broker, slog.Default())

	broker.Set(session.Session{UserID: "u1", Authenticated: true})

	if got := servedBy(t, router.Checklists()); got != "local" {
		t.Errorf("served by %q, want local when no remote is configured", got)
	}
}

func TestAnonymousAuthenticatedIsNotTrusted(t *testing.T) {
	local := &stubProvider{name: "local"}
	broker := session.NewBroker()
	router := NewRouter(local, func(string) Provider {
		return &stubProvider{name: "remote"}
	}, broker, slog.Default())

	// A guest session can be authenticated yet anonymous; it must not be
	// routed to the remote store.
	broker.Set(session.Session{UserID: "guest", Authenticated: true, Anonymous: true})

	if got := servedBy(t, router.Checklists()); got != "local" {
		t.Errorf("served by %q, want local for anonymous session", got)
	}
}

// downChecklists fails every call the way the remote adapter does when the
// object store cannot be reached.
type downChecklists struct{ stubChecklists }

func (downChecklists) List(context.Context) ([]model.Checklist, error) {
	return nil, ErrUnavailable
}

type downProvider struct{ stubProvider }

func (p *downProvider) Checklists() ChecklistStore { return downChecklists{} }

func TestUnreachableRemoteSurfacesError(t *testing.T) {
	local := &stubProvider{name: "local"}
	broker := session.NewBroker()
	router := NewRouter(local, func(string) Provider {
		return &downProvider{}
	}, broker, slog.Default())

	broker.Set(session.Session{UserID: "u1", Authenticated: true})

	// A trusted session whose remote is down must see the failure, never
	// local data: serving it from local would split the session's records
	// across stores.
	_, err := router.Checklists().List(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("trusted session with remote down: got %v, want ErrUnavailable", err)
	}
}

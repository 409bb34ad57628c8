package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hollis/grocer/internal/model"
	"github.com/hollis/grocer/internal/store"
)

// fakeS3 is an in-memory stand-in for the S3 API slice the adapter uses.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	offline bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

var errOffline = errors.New("connection refused")

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(input.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	data, ok := f.objects[aws.ToString(input.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	delete(f.objects, aws.ToString(input.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(input.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) setOffline(offline bool) {
	f.mu.Lock()
	f.offline = offline
	f.mu.Unlock()
}

func setupTestProvider(t *testing.T) (*Provider, *fakeS3) {
	t.Helper()
	client := newFakeS3()
	return New(client, "grocer-test", "user-1", slog.Default()), client
}

var testIDs int64 = 5000

func nextTestID() int64 {
	testIDs++
	return testIDs
}

func makeChecklist(t *testing.T, p *Provider, name string) *model.Checklist {
	t.Helper()
	now := time.Now().UTC()
	c := &model.Checklist{ID: nextTestID(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := p.Checklists().Create(context.Background(), c); err != nil {
		t.Fatalf("create checklist: %v", err)
	}
	return c
}

func makeLine(t *testing.T, p *Provider, checklistID, itemID int64, order, quantity int) *model.ChecklistItem {
	t.Helper()
	now := time.Now().UTC()
	ci := &model.ChecklistItem{
		ID:          nextTestID(),
		ChecklistID: checklistID,
		ItemID:      itemID,
		Order:       order,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.ChecklistItems().Create(context.Background(), ci); err != nil {
		t.Fatalf("create checklist item: %v", err)
	}
	return ci
}

func TestChecklistRoundTrip(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()

	c := makeChecklist(t, p, "Weekly")

	got, err := p.Checklists().GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get checklist: %v", err)
	}
	if got.Name != "Weekly" {
		t.Errorf("name = %q, want %q", got.Name, "Weekly")
	}

	got.Name = "Weekly Shop"
	if err := p.Checklists().Update(ctx, got); err != nil {
		t.Fatalf("update checklist: %v", err)
	}

	lists, err := p.Checklists().List(ctx)
	if err != nil {
		t.Fatalf("list checklists: %v", err)
	}
	if len(lists) != 1 || lists[0].Name != "Weekly Shop" {
		t.Errorf("list = %+v, want one checklist named Weekly Shop", lists)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()

	if _, err := p.Checklists().GetByID(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get: err = %v, want ErrNotFound", err)
	}
	if err := p.ChecklistItems().Delete(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("delete: err = %v, want ErrNotFound", err)
	}

	var missing model.Checklist
	if err := p.Checklists().Update(ctx, &missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update: err = %v, want ErrNotFound", err)
	}
}

func TestUnauthenticatedScope(t *testing.T) {
	client := newFakeS3()
	p := New(client, "grocer-test", "", slog.Default())
	ctx := context.Background()

	if _, err := p.Checklists().List(ctx); !errors.Is(err, store.ErrUnauthenticated) {
		t.Errorf("list: err = %v, want ErrUnauthenticated", err)
	}
	c := &model.Checklist{ID: 1, Name: "x"}
	if err := p.Checklists().Create(ctx, c); !errors.Is(err, store.ErrUnauthenticated) {
		t.Errorf("create: err = %v, want ErrUnauthenticated", err)
	}
}

func TestOfflineIsUnavailable(t *testing.T) {
	p, client := setupTestProvider(t)
	ctx := context.Background()

	c := makeChecklist(t, p, "Weekly")
	client.setOffline(true)

	if _, err := p.Checklists().GetByID(ctx, c.ID); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("get: err = %v, want ErrUnavailable", err)
	}
	if _, err := p.Checklists().List(ctx); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("list: err = %v, want ErrUnavailable", err)
	}
}

func TestListByChecklistFiltersAndSorts(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()

	a := makeChecklist(t, p, "A")
	b := makeChecklist(t, p, "B")

	l2 := makeLine(t, p, a.ID, 1, 2, 1)
	l1 := makeLine(t, p, a.ID, 2, 1, 1)
	makeLine(t, p, b.ID, 3, 1, 1)

	lines, err := p.ChecklistItems().ListByChecklist(ctx, a.ID)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines for checklist A, got %d", len(lines))
	}
	if lines[0].ID != l1.ID || lines[1].ID != l2.ID {
		t.Errorf("order = [%d %d], want [%d %d]", lines[0].ID, lines[1].ID, l1.ID, l2.ID)
	}
}

func TestReplaceOrdersRemote(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()

	c := makeChecklist(t, p, "Weekly")
	l1 := makeLine(t, p, c.ID, 1, 1, 1)
	l2 := makeLine(t, p, c.ID, 2, 2, 1)

	err := p.ChecklistItems().ReplaceOrders(ctx, c.ID, []store.OrderAssignment{
		{ChecklistItemID: l2.ID, Order: 1},
		{ChecklistItemID: l1.ID, Order: 2},
	})
	if err != nil {
		t.Fatalf("replace orders: %v", err)
	}

	lines, _ := p.ChecklistItems().ListByChecklist(ctx, c.ID)
	if lines[0].ID != l2.ID || lines[1].ID != l1.ID {
		t.Errorf("order after replace = [%d %d], want [%d %d]", lines[0].ID, lines[1].ID, l2.ID, l1.ID)
	}
}

func TestChecklistDeleteCascadesRemote(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()

	c := makeChecklist(t, p, "Weekly")
	line := makeLine(t, p, c.ID, 1, 1, 1)

	if err := p.Checklists().Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete checklist: %v", err)
	}
	if _, err := p.ChecklistItems().GetByID(ctx, line.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("line should be gone: err = %v, want ErrNotFound", err)
	}
}

func TestRemoteStats(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()

	c := makeChecklist(t, p, "Weekly")

	now := time.Now().UTC()
	coffee := &model.Item{ID: nextTestID(), Name: "Coffee", Price: 20, CreatedAt: now, UpdatedAt: now}
	steak := &model.Item{ID: nextTestID(), Name: "Steak", Price: 85, CreatedAt: now, UpdatedAt: now}
	for _, i := range []*model.Item{coffee, steak} {
		if err := p.Items().Create(ctx, i); err != nil {
			t.Fatalf("create item: %v", err)
		}
	}
	makeLine(t, p, c.ID, coffee.ID, 1, 4)
	makeLine(t, p, c.ID, steak.ID, 2, 5)

	total, err := p.Stats().ChecklistTotal(ctx, c.ID)
	if err != nil {
		t.Fatalf("checklist total: %v", err)
	}
	if total != 505 {
		t.Errorf("total = %v, want 505", total)
	}

	count, err := p.Stats().ItemCount(ctx, c.ID)
	if err != nil {
		t.Fatalf("item count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestHistoryRoundTripRemote(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()

	when := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	h := &model.History{ID: nextTestID(), ChecklistID: 42, Name: "Trip", CreatedAt: when}
	items := []model.HistoryItem{
		{ID: nextTestID(), HistoryID: h.ID, Name: "Milk", Category: "Dairy", Price: 3, Quantity: 2, Order: 1, IsChecked: true, CreatedAt: when},
		{ID: nextTestID(), HistoryID: h.ID, Name: "Bread", Category: "Bakery", Price: 2, Quantity: 1, Order: 2, CreatedAt: when},
	}
	if err := p.Histories().Create(ctx, h, items); err != nil {
		t.Fatalf("create history: %v", err)
	}

	got, err := p.Histories().ListItems(ctx, h.ID)
	if err != nil {
		t.Fatalf("list history items: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Milk" {
		t.Fatalf("items = %+v, want Milk first", got)
	}

	total, err := p.Stats().HistoryCheckedTotal(ctx, h.ID)
	if err != nil {
		t.Fatalf("history checked total: %v", err)
	}
	if total != 6 {
		t.Errorf("total = %v, want 6", total)
	}

	totals, err := p.Stats().CategoryMonthTotals(ctx)
	if err != nil {
		t.Fatalf("category month totals: %v", err)
	}
	if len(totals) != 1 || totals[0].Category != "Dairy" || totals[0].Month != "2026-05" || totals[0].Total != 6 {
		t.Errorf("totals = %+v, want [{Dairy 2026-05 6}]", totals)
	}

	if err := p.Histories().Delete(ctx, h.ID); err != nil {
		t.Fatalf("delete history: %v", err)
	}
	left, _ := p.Histories().ListItems(ctx, h.ID)
	if len(left) != 0 {
		t.Errorf("expected 0 items after cascade, got %d", len(left))
	}
}

func TestDeleteReferencedItemRefusedRemote(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()

	c := makeChecklist(t, p, "Weekly")
	now := time.Now().UTC()
	item := &model.Item{ID: nextTestID(), Name: "Bread", Price: 3, CreatedAt: now, UpdatedAt: now}
	if err := p.Items().Create(ctx, item); err != nil {
		t.Fatalf("create item: %v", err)
	}
	line := makeLine(t, p, c.ID, item.ID, 1, 1)

	err := p.Items().Delete(ctx, item.ID)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("delete referenced item: got %v, want ErrConflict", err)
	}
	if _, err := p.Items().GetByID(ctx, item.ID); err != nil {
		t.Fatalf("item should survive a refused delete: %v", err)
	}

	// Once the line is gone the delete goes through.
	if err := p.ChecklistItems().Delete(ctx, line.ID); err != nil {
		t.Fatalf("delete line: %v", err)
	}
	if err := p.Items().Delete(ctx, item.ID); err != nil {
		t.Fatalf("delete unreferenced item: %v", err)
	}
}

package deals

import (
	"context"
	"errors"
	"fmt"

	"dealdesk/internal/citation"
	"dealdesk/internal/collab"
	"dealdesk/internal/store"
)

// fakeEntityStore is an in-memory EntityStore with deterministic
// ListAll order.
type fakeEntityStore struct {
	order      []string
	deals      map[string]*store.Deal
	activities []store.Activity

	getErr    error
	listCalls int
}

func newFakeEntityStore(deals ...store.Deal) *fakeEntityStore {
	f := &fakeEntityStore{deals: make(map[string]*store.Deal)}
	for i := range deals {
		d := deals[i]
		f.order = append(f.order, d.ID)
		f.deals[d.ID] = &d
	}
	return f
}

func (f *fakeEntityStore) GetByID(ctx context.Context, id string) (*store.Deal, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.deals[id]
	if !ok {
		return nil, fmt.Errorf("%w: deal %s", store.ErrNotFound, id)
	}
	cp := *d
	return &cp, nil
}

func (f *fakeEntityStore) ListAll(ctx context.Context) ([]store.Deal, error) {
	f.listCalls++
	out := make([]store.Deal, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.deals[id])
	}
	return out, nil
}

func (f *fakeEntityStore) UpdateStage(ctx context.Context, id, stage string) (*store.Deal, error) {
	d, ok := f.deals[id]
	if !ok {
		return nil, fmt.Errorf("%w: deal %s", store.ErrNotFound, id)
	}
	d.Stage = stage
	cp := *d
	return &cp, nil
}

func (f *fakeEntityStore) CreateActivity(ctx context.Context, dealID string, a store.Activity) (*store.Activity, error) {
	if _, ok := f.deals[dealID]; !ok {
		return nil, fmt.Errorf("%w: deal %s", store.ErrNotFound, dealID)
	}
	a.ID = fmt.Sprintf("act-%d", len(f.activities)+1)
	a.DealID = dealID
	f.activities = append(f.activities, a)
	return &a, nil
}

// fakeCitationStore records attachments and can fail per path.
type fakeCitationStore struct {
	attached []citation.Citation
	failFor  map[string]bool
}

func (f *fakeCitationStore) Attach(ctx context.Context, recordID string, c citation.Citation) error {
	if f.failFor[c.Path] {
		return errors.New("citation store unavailable")
	}
	f.attached = append(f.attached, c)
	return nil
}

// fakeEmail captures drafts or fails on demand.
type fakeEmail struct {
	drafts []collab.EmailDraft
	err    error
}

func (f *fakeEmail) CreateDraft(ctx context.Context, dealID string, draft collab.EmailDraft) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.drafts = append(f.drafts, draft)
	return fmt.Sprintf("draft-%d", len(f.drafts)), nil
}

// fakeCRM captures pushes or fails on demand.
type fakeCRM struct {
	pushed []store.Deal
	err    error
}

func (f *fakeCRM) PushDeal(ctx context.Context, deal store.Deal) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.pushed = append(f.pushed, deal)
	return fmt.Sprintf("crm-%d", len(f.pushed)), nil
}

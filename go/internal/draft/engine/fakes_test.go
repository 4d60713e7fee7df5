package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/tierdraft/go/internal/draft/jobs"
	"github.com/mcdev12/tierdraft/go/internal/draft/store"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/mcdev12/tierdraft/go/internal/tierlist"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	Type    string
	Payload any
}

type recordingSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingSink) Emit(_ context.Context, eventType string, _ uuid.UUID, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, Payload: payload})
	return nil
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Send(_ context.Context, _ string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type fakeScheduler struct {
	mu      sync.Mutex
	pending []jobs.Job
}

func (f *fakeScheduler) Schedule(_ context.Context, job jobs.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, job)
	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, kind jobs.Kind, divisionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.pending[:0]
	for _, j := range f.pending {
		if j.Kind == kind && j.DivisionID == divisionID {
			continue
		}
		kept = append(kept, j)
	}
	f.pending = kept
	return nil
}

func (f *fakeScheduler) byKind(kind jobs.Kind) []jobs.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []jobs.Job
	for _, j := range f.pending {
		if j.Kind == kind {
			out = append(out, j)
		}
	}
	return out
}

func (f *fakeScheduler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

var errBoom = errors.New("boom")

// failingStore wraps a Memory store and fails every UpdateDivision while fail is set.
type failingStore struct {
	*store.Memory
	fail bool
}

func (f *failingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return f.Memory.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if f.fail {
			return fn(ctx, failingTx{Tx: tx})
		}
		return fn(ctx, tx)
	})
}

type failingTx struct {
	store.Tx
}

func (failingTx) UpdateDivision(context.Context, *models.Division) error {
	return errBoom
}

type harness struct {
	engine    *Engine
	store     store.Store
	clock     *clockwork.FakeClock
	events    *recordingSink
	notifier  *recordingNotifier
	scheduler *fakeScheduler
	div       *models.Division
}

func cheapTierList(maxPicks int) *tierlist.TierList {
	items := map[string]tierlist.Item{}
	for _, id := range []string{"i1", "i2", "i3", "i4", "i5", "i6", "i7", "i8"} {
		items[id] = tierlist.Item{Tier: "C"}
	}
	items["big"] = tierlist.Item{Tier: "S"}
	items["rotom"] = tierlist.Item{Tier: "C", Addons: map[string]int{"wash": 3, "heat": 4}}
	return &tierlist.TierList{
		Name:       "test",
		PointTotal: 10,
		DraftCount: tierlist.DraftCount{Min: 1, Max: maxPicks},
		Tiers:      map[string]int{"S": 10, "C": 1},
		Items:      items,
	}
}

func newDivision(style models.DraftStyle, names ...string) *models.Division {
	div := &models.Division{
		ID:          uuid.New(),
		Name:        "Division",
		DraftStyle:  style,
		Status:      models.DivisionStatusPreDraft,
		TimerLength: 240,
		ChannelID:   "draft-channel",
	}
	for _, name := range names {
		div.Teams = append(div.Teams, &models.Team{
			ID:    uuid.New(),
			Name:  name,
			Coach: models.Coach{ID: "coach-" + name, Name: "Coach " + name},
		})
	}
	return div
}

func newHarness(t *testing.T, tl *tierlist.TierList, div *models.Division, st store.Store) *harness {
	t.Helper()
	if st == nil {
		st = store.NewMemory()
	}
	require.NoError(t, st.CreateDivision(context.Background(), div))

	h := &harness{
		store:     st,
		clock:     clockwork.NewFakeClockAt(time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC)),
		events:    &recordingSink{},
		notifier:  &recordingNotifier{},
		scheduler: &fakeScheduler{},
		div:       div,
	}
	h.engine = New(st, tierlist.StaticSource{TierList: tl}, h.scheduler, h.events, h.notifier, WithClock(h.clock))
	return h
}

func (h *harness) team(i int) uuid.UUID {
	return h.div.Teams[i].ID
}

func (h *harness) load(t *testing.T) *models.Division {
	t.Helper()
	div, err := h.store.GetDivision(context.Background(), h.div.ID)
	require.NoError(t, err)
	return div
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	status, err := h.engine.SetDivisionState(context.Background(), h.div.ID, StatePlay)
	require.NoError(t, err)
	require.Equal(t, models.DivisionStatusInProgress, status)
}

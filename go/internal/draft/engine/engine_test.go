package engine

import (
	"context"
	"testing"
	"time"

	"github.com/mcdev12/tierdraft/go/internal/draft/events"
	"github.com/mcdev12/tierdraft/go/internal/draft/jobs"
	"github.com/mcdev12/tierdraft/go/internal/draft/legality"
	"github.com/mcdev12/tierdraft/go/internal/draft/store"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoTeamOneRoundDraftCompletes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(1), newDivision(models.DraftStyleSnake, "A", "B"), nil)
	h.start(t)

	skipJobs := h.scheduler.byKind(jobs.KindSkipPick)
	require.Len(t, skipJobs, 1)
	assert.Equal(t, h.team(0), skipJobs[0].Payload.TeamID)
	assert.Equal(t, h.clock.Now().Add(240*time.Second), skipJobs[0].RunAt)

	_, err := h.engine.DraftItem(ctx, h.div.ID, h.team(1), models.StagedPick{ItemID: "i1"}, "")
	require.ErrorIs(t, err, ErrNotYourTurn)

	res, err := h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Coach A", res.Pick.Picker)
	assert.Equal(t, 1, h.load(t).DraftCounter)

	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "i2"}, "")
	require.ErrorIs(t, err, ErrNotYourTurn)
	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(1), models.StagedPick{ItemID: "i1"}, "")
	require.ErrorIs(t, err, legality.ErrAlreadyDrafted)

	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(1), models.StagedPick{ItemID: "i2"}, "")
	require.NoError(t, err)

	div := h.load(t)
	assert.Equal(t, models.DivisionStatusCompleted, div.Status)
	assert.Equal(t, 2, div.DraftCounter)
	assert.Nil(t, div.SkipTime)
	assert.Zero(t, h.scheduler.count())
	assert.Contains(t, h.events.types(), events.DraftCompleted)

	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(1), models.StagedPick{ItemID: "i3"}, "")
	require.ErrorIs(t, err, ErrNotYourTurn)
}

func TestDraftItemUnknownTeam(t *testing.T) {
	h := newHarness(t, cheapTierList(1), newDivision(models.DraftStyleSnake, "A", "B"), nil)
	h.start(t)

	stranger := newDivision(models.DraftStyleSnake, "X").Teams[0].ID
	_, err := h.engine.DraftItem(context.Background(), h.div.ID, stranger, models.StagedPick{ItemID: "i1"}, "")
	require.ErrorIs(t, err, ErrTeamNotInDivision)
}

func TestDraftItemLegalityFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleSnake, "A", "B"), nil)
	h.start(t)
	emitted := h.events.count()

	_, err := h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "rotom", Addons: []string{"wash", "wash"}}, "")
	require.ErrorIs(t, err, legality.ErrInvalidAddonSelection)
	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{}, "")
	require.ErrorIs(t, err, legality.ErrMissingItem)

	assert.Equal(t, emitted, h.events.count())
	assert.Equal(t, 0, h.load(t).DraftCounter)
}

func TestRollbackDiscardsSideEffects(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{Memory: store.NewMemory()}
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleSnake, "A", "B"), st)
	h.start(t)

	emitted, notified, pending := h.events.count(), h.notifier.count(), h.scheduler.byKind(jobs.KindSkipPick)

	st.fail = true
	_, err := h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "i1"}, "")
	require.ErrorIs(t, err, errBoom)

	assert.Equal(t, emitted, h.events.count())
	assert.Equal(t, notified, h.notifier.count())
	assert.Equal(t, pending, h.scheduler.byKind(jobs.KindSkipPick))

	div := h.load(t)
	assert.Equal(t, 0, div.DraftCounter)
	assert.Empty(t, div.Teams[0].Draft)

	st.fail = false
	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)
}

func TestStagedPicksCascade(t *testing.T) {
	ctx := context.Background()
	div := newDivision(models.DraftStyleSnake, "A", "B", "C")
	div.Teams[1].Picks = [][]models.StagedPick{{{ItemID: "i1"}, {ItemID: "i2"}}}
	div.Teams[2].Picks = [][]models.StagedPick{{{ItemID: "i3"}}}
	h := newHarness(t, cheapTierList(2), div, nil)
	h.start(t)

	res, err := h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.SnipeCount)
	assert.Equal(t, 2, res.AutoPicks)

	got := h.load(t)
	assert.Equal(t, 3, got.DraftCounter)
	assert.Equal(t, "i2", got.Teams[1].Draft[0].ItemID)
	assert.Equal(t, "Coach B", got.Teams[1].Draft[0].Picker)
	assert.Equal(t, "i3", got.Teams[2].Draft[0].ItemID)
	assert.Empty(t, got.Teams[1].Picks)
	assert.Empty(t, got.Teams[2].Picks)

	var added []events.DraftAddedPayload
	for _, ev := range h.events.events {
		if p, ok := ev.Payload.(events.DraftAddedPayload); ok {
			added = append(added, p)
		}
	}
	require.Len(t, added, 3)
	assert.False(t, added[0].AutoPicked)
	assert.True(t, added[1].AutoPicked)
	assert.True(t, added[2].AutoPicked)
	assert.Equal(t, 1, added[0].CurrentPick.DraftCounter)
	assert.Equal(t, 3, added[2].CurrentPick.DraftCounter)

	// round 1 is reversed, so C is on the clock again with nothing staged
	cp, err := h.engine.CurrentPick(ctx, h.div.ID)
	require.NoError(t, err)
	require.NotNil(t, cp.TeamID)
	assert.Equal(t, h.team(2), *cp.TeamID)

	skipJobs := h.scheduler.byKind(jobs.KindSkipPick)
	require.Len(t, skipJobs, 1)
	assert.Equal(t, 3, skipJobs[0].Payload.DraftCounter)
}

func TestStartDraftCascadesFirstTeam(t *testing.T) {
	div := newDivision(models.DraftStyleLinear, "A", "B")
	div.Teams[0].Picks = [][]models.StagedPick{{{ItemID: "i1"}}}
	h := newHarness(t, cheapTierList(1), div, nil)
	h.start(t)

	got := h.load(t)
	assert.Equal(t, 1, got.DraftCounter)
	assert.True(t, got.Teams[0].HasItem("i1"))
}

func TestDoneTeamsAreSkipped(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleLinear, "A", "B", "C"), nil)
	h.start(t)

	// A spends the whole budget in round 0
	_, err := h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "big"}, "")
	require.NoError(t, err)
	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(1), models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)
	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(2), models.StagedPick{ItemID: "i2"}, "")
	require.NoError(t, err)

	div := h.load(t)
	assert.Equal(t, 4, div.DraftCounter)
	assert.Equal(t, 1, div.Teams[0].SkipCount)
	assert.Contains(t, h.events.types(), events.DraftSkip)

	cp, err := h.engine.CurrentPick(ctx, h.div.ID)
	require.NoError(t, err)
	assert.Equal(t, h.team(1), *cp.TeamID)
}

func TestForceSkipAndCatchUp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleSnake, "A", "B", "C"), nil)
	h.start(t)

	skipped, err := h.engine.ForceSkip(ctx, h.div.ID)
	require.NoError(t, err)
	require.True(t, skipped)

	div := h.load(t)
	assert.Equal(t, 1, div.DraftCounter)
	assert.Equal(t, 1, div.Teams[0].SkipCount)

	eligible, err := h.engine.EligibleTeams(ctx, h.div.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	assert.Equal(t, h.team(0), eligible[0].ID)
	assert.Equal(t, h.team(1), eligible[1].ID)

	// A catches up without moving B off the clock
	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)
	div = h.load(t)
	assert.Equal(t, 1, div.DraftCounter)

	cp, err := h.engine.CurrentPick(ctx, h.div.ID)
	require.NoError(t, err)
	assert.Equal(t, h.team(1), *cp.TeamID)
}

func TestSkipTimerShrinksWithSkipCount(t *testing.T) {
	ctx := context.Background()
	div := newDivision(models.DraftStyleLinear, "A", "B")
	div.Teams[0].SkipCount = 2
	h := newHarness(t, cheapTierList(2), div, nil)
	h.start(t)

	got := h.load(t)
	require.NotNil(t, got.SkipTime)
	assert.Equal(t, h.clock.Now().Add(60*time.Second), *got.SkipTime)

	_, err := h.engine.ForceSkip(ctx, h.div.ID)
	require.NoError(t, err)

	// B has never been skipped
	got = h.load(t)
	assert.Equal(t, h.clock.Now().Add(240*time.Second), *got.SkipTime)
}

func TestSkipIfDue(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleSnake, "A", "B"), nil)
	h.start(t)

	job := h.scheduler.byKind(jobs.KindSkipPick)[0]

	skipped, err := h.engine.SkipIfDue(ctx, h.div.ID, job.Payload.DraftCounter, job.Payload.SkipTime)
	require.NoError(t, err)
	assert.False(t, skipped, "not due yet")

	h.clock.Advance(240 * time.Second)

	skipped, err = h.engine.SkipIfDue(ctx, h.div.ID, job.Payload.DraftCounter+1, job.Payload.SkipTime)
	require.NoError(t, err)
	assert.False(t, skipped, "stale counter")

	skipped, err = h.engine.SkipIfDue(ctx, h.div.ID, job.Payload.DraftCounter, job.Payload.SkipTime)
	require.NoError(t, err)
	assert.True(t, skipped)

	skipped, err = h.engine.SkipIfDue(ctx, h.div.ID, job.Payload.DraftCounter, job.Payload.SkipTime)
	require.NoError(t, err)
	assert.False(t, skipped, "second delivery is a no-op")
}

func TestReminderScheduledOnlyForLongTimers(t *testing.T) {
	div := newDivision(models.DraftStyleSnake, "A", "B")
	div.TimerLength = int((2 * time.Hour).Seconds())
	h := newHarness(t, cheapTierList(2), div, nil)
	h.start(t)

	reminders := h.scheduler.byKind(jobs.KindSkipReminder)
	require.Len(t, reminders, 1)
	assert.Equal(t, h.clock.Now().Add(time.Hour), reminders[0].RunAt)

	short := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleSnake, "A", "B"), nil)
	short.start(t)
	assert.Empty(t, short.scheduler.byKind(jobs.KindSkipReminder))
}

func TestRemindCurrentTeam(t *testing.T) {
	ctx := context.Background()
	div := newDivision(models.DraftStyleSnake, "A", "B")
	div.TimerLength = int((2 * time.Hour).Seconds())
	h := newHarness(t, cheapTierList(2), div, nil)
	h.start(t)

	reminder := h.scheduler.byKind(jobs.KindSkipReminder)[0]
	h.clock.Advance(time.Hour)
	before := h.notifier.count()

	sent, err := h.engine.RemindCurrentTeam(ctx, h.div.ID, reminder.Payload.SkipTime)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, before+1, h.notifier.count())

	// a manual skip moves the skip time, the old reminder must not fire
	_, err = h.engine.ForceSkip(ctx, h.div.ID)
	require.NoError(t, err)
	sent, err = h.engine.RemindCurrentTeam(ctx, h.div.ID, reminder.Payload.SkipTime)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestPauseAndResume(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleSnake, "A", "B"), nil)

	_, err := h.engine.SetDivisionState(ctx, h.div.ID, StatePause)
	require.ErrorIs(t, err, ErrInvalidStateChange)

	h.start(t)
	h.clock.Advance(100 * time.Second)

	status, err := h.engine.SetDivisionState(ctx, h.div.ID, StatePause)
	require.NoError(t, err)
	assert.Equal(t, models.DivisionStatusPaused, status)

	div := h.load(t)
	assert.Nil(t, div.SkipTime)
	require.NotNil(t, div.RemainingTime)
	assert.Equal(t, 140*time.Second, *div.RemainingTime)
	assert.Zero(t, h.scheduler.count())

	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "i1"}, "")
	require.ErrorIs(t, err, ErrNotYourTurn)
	skipped, err := h.engine.ForceSkip(ctx, h.div.ID)
	require.NoError(t, err)
	assert.False(t, skipped)

	h.clock.Advance(time.Hour)
	status, err = h.engine.SetDivisionState(ctx, h.div.ID, StatePlay)
	require.NoError(t, err)
	assert.Equal(t, models.DivisionStatusInProgress, status)

	div = h.load(t)
	require.NotNil(t, div.SkipTime)
	assert.Equal(t, h.clock.Now().Add(140*time.Second), *div.SkipTime)
	assert.Nil(t, div.RemainingTime)
	require.Len(t, h.scheduler.byKind(jobs.KindSkipPick), 1)

	_, err = h.engine.SetDivisionState(ctx, h.div.ID, StateChange("rewind"))
	require.ErrorIs(t, err, ErrInvalidStateChange)
}

func TestTradeRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(1), newDivision(models.DraftStyleSnake, "A", "B"), nil)
	h.start(t)

	_, err := h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)
	_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(1), models.StagedPick{ItemID: "i2"}, "")
	require.NoError(t, err)

	a, b := h.team(0), h.team(1)

	first, err := h.engine.Trade(ctx, h.div.ID,
		models.TradeSide{TeamID: &a, Items: []string{"i1"}},
		models.TradeSide{TeamID: &b},
		"post-draft")
	require.NoError(t, err)

	div := h.load(t)
	assert.False(t, div.Teams[0].HasItem("i1"))
	assert.True(t, div.Teams[1].HasItem("i1"))

	h.clock.Advance(time.Minute)
	second, err := h.engine.Trade(ctx, h.div.ID,
		models.TradeSide{TeamID: &b, Items: []string{"i1"}},
		models.TradeSide{TeamID: &a},
		"post-draft")
	require.NoError(t, err)

	div = h.load(t)
	assert.True(t, div.Teams[0].HasItem("i1"))
	assert.False(t, div.Teams[1].HasItem("i1"))
	assert.True(t, div.Teams[1].HasItem("i2"))
	assert.Equal(t, "Coach A", div.Teams[0].Draft[0].Picker)
	assert.Equal(t, h.clock.Now(), div.Teams[0].Draft[0].Timestamp)

	require.Len(t, div.Trades, 2)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, div.Trades[0].Timestamp, div.Trades[1].Timestamp)
	assert.Equal(t, 2, countType(h.events.types(), events.DraftTrade))
}

func TestTradeValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(1), newDivision(models.DraftStyleSnake, "A", "B"), nil)
	h.start(t)
	a, b := h.team(0), h.team(1)

	trade, err := h.engine.Trade(ctx, h.div.ID, models.TradeSide{Items: []string{"i1"}}, models.TradeSide{}, "")
	require.NoError(t, err)
	assert.Nil(t, trade)

	_, err = h.engine.Trade(ctx, h.div.ID,
		models.TradeSide{TeamID: &a, Items: []string{"i1"}},
		models.TradeSide{TeamID: &b},
		"")
	require.ErrorIs(t, err, ErrItemNotFound)
	assert.Empty(t, h.load(t).Trades)
}

func TestDivisionSnapshot(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleSnake, "A", "B"), nil)
	h.start(t)

	_, err := h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "rotom", Addons: []string{"heat"}}, "")
	require.NoError(t, err)

	snap, err := h.engine.DivisionSnapshot(ctx, h.div.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Rounds)
	assert.Len(t, snap.Board, 4)
	assert.Equal(t, 6, snap.Remaining[h.team(0)])
	assert.Equal(t, 10, snap.Remaining[h.team(1)])
	require.Len(t, snap.Eligible, 1)
	assert.Equal(t, h.team(1), snap.Eligible[0])
}

func countType(types []string, want string) int {
	n := 0
	for _, t := range types {
		if t == want {
			n++
		}
	}
	return n
}

func TestSetStagedPicks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleLinear, "A", "B"), nil)
	h.start(t)

	_, err := h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)

	queue := [][]models.StagedPick{{{ItemID: "i1"}, {ItemID: "i2"}}, {{ItemID: "i3"}}}
	require.NoError(t, h.engine.SetStagedPicks(ctx, h.div.ID, h.team(1), queue))

	got := h.load(t).Teams[1].Picks
	require.Len(t, got, 2)
	// already drafted items are dropped from the queue
	assert.Equal(t, []models.StagedPick{{ItemID: "i2"}}, got[0])
	assert.Equal(t, "i1", queue[0][0].ItemID)

	tooLong := [][]models.StagedPick{{{ItemID: "i2"}}, {{ItemID: "i3"}}, {{ItemID: "i4"}}}
	require.ErrorIs(t, h.engine.SetStagedPicks(ctx, h.div.ID, h.team(1), tooLong), ErrQueueTooLong)

	stranger := newDivision(models.DraftStyleSnake, "X").Teams[0].ID
	require.ErrorIs(t, h.engine.SetStagedPicks(ctx, h.div.ID, stranger, nil), ErrTeamNotInDivision)
}

func TestTradeWithFreePool(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleLinear, "A", "B"), nil)
	h.start(t)
	a, b := h.team(0), h.team(1)

	_, err := h.engine.DraftItem(ctx, h.div.ID, a, models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)

	_, err = h.engine.Trade(ctx, h.div.ID, models.TradeSide{TeamID: &b}, models.TradeSide{Items: []string{"i1"}}, "")
	require.ErrorIs(t, err, legality.ErrAlreadyDrafted)
	_, err = h.engine.Trade(ctx, h.div.ID, models.TradeSide{TeamID: &b}, models.TradeSide{Items: []string{"bogus"}}, "")
	require.ErrorIs(t, err, legality.ErrUnknownItem)
	_, err = h.engine.Trade(ctx, h.div.ID, models.TradeSide{TeamID: &a, Items: []string{"i1", "i1"}}, models.TradeSide{}, "")
	require.ErrorIs(t, err, ErrInvalidTrade)

	div := h.load(t)
	assert.Empty(t, div.Trades)
	assert.Empty(t, div.Teams[1].Draft)
	_, err = h.engine.DivisionSnapshot(ctx, h.div.ID)
	require.NoError(t, err)

	// A swaps i1 for i3 from the pool, then B claims the released i1
	_, err = h.engine.Trade(ctx, h.div.ID,
		models.TradeSide{TeamID: &a, Items: []string{"i1"}},
		models.TradeSide{Items: []string{"i3"}},
		"mid-draft")
	require.NoError(t, err)
	_, err = h.engine.Trade(ctx, h.div.ID, models.TradeSide{TeamID: &b}, models.TradeSide{Items: []string{"i1"}}, "mid-draft")
	require.NoError(t, err)

	div = h.load(t)
	assert.True(t, div.Teams[0].HasItem("i3"))
	assert.False(t, div.Teams[0].HasItem("i1"))
	assert.True(t, div.Teams[1].HasItem("i1"))
	assert.Len(t, div.Trades, 2)
}

func TestSelfTradeRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleLinear, "A", "B"), nil)
	h.start(t)
	a := h.team(0)

	_, err := h.engine.DraftItem(ctx, h.div.ID, a, models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)

	_, err = h.engine.Trade(ctx, h.div.ID,
		models.TradeSide{TeamID: &a, Items: []string{"i1"}},
		models.TradeSide{TeamID: &a},
		"")
	require.ErrorIs(t, err, ErrInvalidTrade)
	assert.Empty(t, h.load(t).Trades)
}

func TestCascadeStopsForTeamAheadOfTurn(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(3), newDivision(models.DraftStyleLinear, "A", "B"), nil)
	h.start(t)
	b := h.team(1)

	// B is handed an extra item before its first turn
	_, err := h.engine.Trade(ctx, h.div.ID, models.TradeSide{TeamID: &b}, models.TradeSide{Items: []string{"i5"}}, "")
	require.NoError(t, err)
	require.NoError(t, h.engine.SetStagedPicks(ctx, h.div.ID, b, [][]models.StagedPick{{{ItemID: "i2"}}}))

	res, err := h.engine.DraftItem(ctx, h.div.ID, h.team(0), models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)
	assert.Zero(t, res.AutoPicks)

	div := h.load(t)
	assert.Equal(t, 1, div.DraftCounter)
	assert.True(t, div.Teams[0].HasItem("i1"))
	assert.Len(t, div.Teams[1].Draft, 1)
	assert.Equal(t, [][]models.StagedPick{{{ItemID: "i2"}}}, div.Teams[1].Picks)
}

func TestCascadeBound(t *testing.T) {
	div := newDivision(models.DraftStyleLinear, "A", "B")
	div.Teams[0].Picks = [][]models.StagedPick{{{ItemID: "i1"}}, {{ItemID: "i3"}}}
	div.Teams[1].Picks = [][]models.StagedPick{{{ItemID: "i2"}}, {{ItemID: "i4"}}}
	h := newHarness(t, cheapTierList(3), div, nil)
	h.start(t)

	// one auto pick per team, then A is left on the clock with a staged pick
	got := h.load(t)
	assert.Equal(t, 2, got.DraftCounter)
	assert.Len(t, got.Teams[0].Draft, 1)
	assert.Len(t, got.Teams[1].Draft, 1)
	assert.Equal(t, [][]models.StagedPick{{{ItemID: "i3"}}}, got.Teams[0].Picks)

	require.NotEmpty(t, h.notifier.messages)
	assert.Contains(t, h.notifier.messages[len(h.notifier.messages)-1], "<@coach-A> it's your turn to draft (round 2, pick 1)")

	skipJobs := h.scheduler.byKind(jobs.KindSkipPick)
	require.Len(t, skipJobs, 1)
	assert.Equal(t, h.team(0), skipJobs[0].Payload.TeamID)
	assert.Equal(t, 2, skipJobs[0].Payload.DraftCounter)
}

func TestCatchUpPickKeepsStagedQueue(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, cheapTierList(2), newDivision(models.DraftStyleSnake, "A", "B", "C"), nil)
	h.start(t)
	a := h.team(0)

	_, err := h.engine.ForceSkip(ctx, h.div.ID)
	require.NoError(t, err)
	require.NoError(t, h.engine.SetStagedPicks(ctx, h.div.ID, a, [][]models.StagedPick{{{ItemID: "i3"}}}))

	_, err = h.engine.DraftItem(ctx, h.div.ID, a, models.StagedPick{ItemID: "i1"}, "")
	require.NoError(t, err)
	assert.Equal(t, [][]models.StagedPick{{{ItemID: "i3"}}}, h.load(t).Teams[0].Picks)

	for _, pick := range []struct {
		team int
		item string
	}{{1, "i2"}, {2, "i4"}, {2, "i6"}, {1, "i7"}} {
		_, err = h.engine.DraftItem(ctx, h.div.ID, h.team(pick.team), models.StagedPick{ItemID: pick.item}, "")
		require.NoError(t, err)
	}

	// the queue is spent on A's live turn in round 2
	got := h.load(t)
	require.Len(t, got.Teams[0].Draft, 2)
	assert.Equal(t, "i3", got.Teams[0].Draft[1].ItemID)
	assert.Empty(t, got.Teams[0].Picks)
	assert.Equal(t, models.DivisionStatusCompleted, got.Status)
}

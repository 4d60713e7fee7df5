package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/draft/events"
	"github.com/mcdev12/tierdraft/go/internal/draft/jobs"
	"github.com/mcdev12/tierdraft/go/internal/draft/legality"
	"github.com/mcdev12/tierdraft/go/internal/draft/turn"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	reminderLead   = time.Hour
	reminderMargin = time.Second
)

// DraftResult reports what a DraftItem call committed.
type DraftResult struct {
	Pick       models.Pick `json:"pick"`
	SnipeCount int         `json:"snipe_count"`
	AutoPicks  int         `json:"auto_picks"`
}

// committed is a pick applied inside a scope whose draft.added event is still pending.
type committed struct {
	team       *models.Team
	pick       models.Pick
	onClock    bool
	auto       bool
	snipeCount int
}

// DraftItem commits a pick for teamID and advances the draft, auto-drafting staged picks
// of the following teams in the same transaction.
func (e *Engine) DraftItem(ctx context.Context, divisionID, teamID uuid.UUID, sel models.StagedPick, picker string) (*DraftResult, error) {
	var res DraftResult
	err := e.run(ctx, "draft_item", divisionID, func(ctx context.Context, s *scope) error {
		c, err := e.applyPick(s, teamID, sel, picker, false)
		if err != nil {
			return err
		}
		before := s.depth
		if err := e.advance(ctx, s, c, c.onClock); err != nil {
			return err
		}
		res = DraftResult{Pick: c.pick, SnipeCount: c.snipeCount, AutoPicks: s.depth - before}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("division_id", divisionID.String()).
		Str("team_id", teamID.String()).
		Str("item_id", sel.ItemID).
		Int("snipe_count", res.SnipeCount).
		Int("auto_picks", res.AutoPicks).
		Msg("pick committed")
	return &res, nil
}

// applyPick validates and appends one pick. It does not move the turn.
func (e *Engine) applyPick(s *scope, teamID uuid.UUID, sel models.StagedPick, picker string, auto bool) (*committed, error) {
	team, ok := s.div.Team(teamID)
	if !ok {
		return nil, fmt.Errorf("%w: team %s, division %s", ErrTeamNotInDivision, teamID, s.div.ID)
	}
	if !turn.CanTeamDraft(s.div, s.order, team) {
		return nil, fmt.Errorf("%w: %s does not owe a pick right now", ErrNotYourTurn, team.Name)
	}

	if picker == "" {
		picker = team.Coach.Name
	}
	pick := models.Pick{
		ItemID:    sel.ItemID,
		Addons:    slices.Clone(sel.Addons),
		Picker:    picker,
		Timestamp: s.now,
	}
	if err := legality.Check(s.tl, s.div, team, pick); err != nil {
		return nil, err
	}

	current := turn.CurrentTeam(s.div, s.order, s.rounds)
	onClock := current != nil && current.ID == team.ID

	team.Draft = append(team.Draft, pick)
	if len(team.Picks) > 0 && (onClock || stagedIn(team.Picks[0], pick.ItemID)) {
		team.Picks = team.Picks[1:]
	}
	s.touch(team)

	snipes := 0
	for _, other := range s.div.Teams {
		if other.ID == team.ID {
			continue
		}
		if n := other.StripStaged(pick.ItemID); n > 0 {
			snipes += n
			s.touch(other)
		}
	}

	source := "manual"
	if auto {
		source = "auto"
	}
	s.later("metric", func(context.Context) { e.metrics.RecordPick(source) })
	e.notify(s, pickMessage(team, pick, auto))

	return &committed{team: team, pick: pick, onClock: onClock, auto: auto, snipeCount: snipes}, nil
}

// advance moves the turn after a pick (c) or a skip (c == nil) and then runs the
// auto-pick cascade for whichever team ends up on the clock.
func (e *Engine) advance(ctx context.Context, s *scope, c *committed, increment bool) error {
	next, err := e.moveTurn(ctx, s, increment)
	if err != nil {
		return err
	}
	if c != nil {
		e.queueAdded(s, c)
	} else if next != nil {
		e.queueCounter(s)
	}
	return e.cascade(ctx, s, next)
}

// cascade drafts the front staged pick of each team that comes on the clock, bounded by
// the number of teams in the division.
func (e *Engine) cascade(ctx context.Context, s *scope, next *models.Team) error {
	start := s.depth
	defer func() {
		if depth := s.depth - start; depth > 0 {
			s.later("metric", func(context.Context) { e.metrics.RecordCascade(depth) })
		}
	}()

	for iterations := 0; next != nil; iterations++ {
		sel, ok := e.stagedPick(s, next)
		if !ok {
			e.notify(s, yourTurnMessage(s, next))
			return nil
		}
		if iterations >= len(s.div.Teams) {
			log.Warn().
				Str("division_id", s.div.ID.String()).
				Int("iterations", iterations).
				Msg("auto-pick cascade bound reached")
			e.notify(s, yourTurnMessage(s, next))
			return nil
		}

		c, err := e.applyPick(s, next.ID, sel, next.Coach.Name, true)
		if err != nil {
			return fmt.Errorf("failed to auto-draft for %s: %w", next.Name, err)
		}
		s.depth++

		next, err = e.moveTurn(ctx, s, c.onClock)
		if err != nil {
			return err
		}
		e.queueAdded(s, c)
	}
	return nil
}

// stagedPick returns the first legal selection in the team's front staged round. A team
// that already holds every pick it is owed gets none.
func (e *Engine) stagedPick(s *scope, team *models.Team) (models.StagedPick, bool) {
	if len(team.Picks) == 0 || !turn.CanTeamDraft(s.div, s.order, team) {
		return models.StagedPick{}, false
	}
	for _, sel := range team.Picks[0] {
		pick := models.Pick{ItemID: sel.ItemID, Addons: sel.Addons}
		if legality.Check(s.tl, s.div, team, pick) == nil {
			return sel, true
		}
	}
	return models.StagedPick{}, false
}

func stagedIn(round []models.StagedPick, itemID string) bool {
	return slices.ContainsFunc(round, func(sp models.StagedPick) bool { return sp.ItemID == itemID })
}

// moveTurn increments the counter when the on-clock pick was made (or skipped), completes
// the draft when nothing is left, and otherwise settles the next live team. Picks made out
// of turn by a catch-up team only run the completion check.
func (e *Engine) moveTurn(ctx context.Context, s *scope, increment bool) (*models.Team, error) {
	if s.div.Status != models.DivisionStatusInProgress {
		return nil, nil
	}
	if !increment {
		finished, err := e.finished(s)
		if err != nil {
			return nil, err
		}
		if finished {
			e.complete(s)
		}
		return nil, nil
	}

	s.div.DraftCounter = min(s.div.DraftCounter+1, s.total())
	return e.settle(ctx, s, nil)
}

// settle finds the team on the clock, skipping teams that are done drafting, and starts
// its timer. remaining overrides the timer length when resuming a paused draft.
func (e *Engine) settle(_ context.Context, s *scope, remaining *time.Duration) (*models.Team, error) {
	for skips := 0; ; skips++ {
		finished, err := e.finished(s)
		if err != nil {
			return nil, err
		}
		if finished {
			e.complete(s)
			return nil, nil
		}

		next := turn.CurrentTeam(s.div, s.order, s.rounds)
		if next == nil {
			e.complete(s)
			return nil, nil
		}

		done, err := turn.DoneDrafting(s.tl, next)
		if err != nil {
			return nil, err
		}
		if !done {
			e.startTimer(s, next, remaining)
			return next, nil
		}

		if skips >= len(s.div.Teams) {
			log.Warn().
				Str("division_id", s.div.ID.String()).
				Int("draft_counter", s.div.DraftCounter).
				Msg("no live team found, completing draft")
			e.complete(s)
			return nil, nil
		}

		next.SkipCount++
		s.touch(next)
		e.emit(s, events.DraftSkip, events.DraftSkipPayload{
			DivisionID: s.div.ID,
			TeamID:     next.ID,
			SkipCount:  next.SkipCount,
			SkippedAt:  s.now,
		})
		s.later("metric", func(context.Context) { e.metrics.RecordSkip("done") })
		s.div.DraftCounter = min(s.div.DraftCounter+1, s.total())
	}
}

// startTimer sets the skip time for the team on the clock and queues the skip jobs.
// Divisions without a timer length never auto-skip.
func (e *Engine) startTimer(s *scope, team *models.Team, remaining *time.Duration) {
	e.cancelJobs(s)
	s.div.RemainingTime = nil
	if s.div.TimerLength <= 0 {
		s.div.SkipTime = nil
		return
	}

	timer := turn.TimerFor(time.Duration(s.div.TimerLength)*time.Second, team.SkipCount)
	if remaining != nil {
		timer = *remaining
	}
	skipAt := s.now.Add(timer)
	s.div.SkipTime = &skipAt

	payload := jobs.Payload{DraftCounter: s.div.DraftCounter, TeamID: team.ID, SkipTime: skipAt}
	e.schedule(s, jobs.New(jobs.KindSkipPick, s.div.ID, skipAt, payload))
	if skipAt.Sub(s.now) > reminderLead+reminderMargin {
		e.schedule(s, jobs.New(jobs.KindSkipReminder, s.div.ID, skipAt.Add(-reminderLead), payload))
	}
}

// finished reports whether the counter is exhausted or every team is done drafting.
func (e *Engine) finished(s *scope) (bool, error) {
	if s.div.DraftCounter >= s.total() {
		return true, nil
	}
	for _, team := range s.div.Teams {
		done, err := turn.DoneDrafting(s.tl, team)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
	}
	return true, nil
}

// complete is idempotent.
func (e *Engine) complete(s *scope) {
	if s.div.Status == models.DivisionStatusCompleted {
		return
	}
	s.div.Status = models.DivisionStatusCompleted
	s.div.SkipTime = nil
	s.div.RemainingTime = nil
	e.cancelJobs(s)
	e.emit(s, events.DraftCompleted, events.DraftCompletedPayload{
		DivisionID:   s.div.ID,
		DraftCounter: s.div.DraftCounter,
		CompletedAt:  s.now,
	})
	e.notify(s, completedMessage(s.div))
}

func (e *Engine) currentPick(s *scope) events.CurrentPick {
	return currentPickOf(s.div, s.order, s.rounds)
}

func (e *Engine) eligibleIDs(s *scope) []uuid.UUID {
	return teamIDs(turn.EligibleTeams(s.div, s.pickOrder()))
}

func (e *Engine) queueAdded(s *scope, c *committed) {
	e.emit(s, events.DraftAdded, events.DraftAddedPayload{
		DivisionID:  s.div.ID,
		TeamID:      c.team.ID,
		TeamName:    c.team.Name,
		Pick:        c.pick,
		AutoPicked:  c.auto,
		SnipeCount:  c.snipeCount,
		Eligible:    e.eligibleIDs(s),
		CurrentPick: e.currentPick(s),
	})
}

func (e *Engine) queueCounter(s *scope) {
	e.emit(s, events.DraftCounter, events.DraftCounterPayload{
		DivisionID:  s.div.ID,
		Eligible:    e.eligibleIDs(s),
		CurrentPick: e.currentPick(s),
	})
}

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/tierdraft/go/internal/draft/events"
	"github.com/mcdev12/tierdraft/go/internal/draft/jobs"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSkipper struct {
	skipped   bool
	skipErr   error
	reminded  []time.Time
	current   events.CurrentPick
	skipCalls int
}

func (f *fakeSkipper) SkipIfDue(context.Context, uuid.UUID, int, time.Time) (bool, error) {
	f.skipCalls++
	return f.skipped, f.skipErr
}

func (f *fakeSkipper) RemindCurrentTeam(_ context.Context, _ uuid.UUID, skipTime time.Time) (bool, error) {
	f.reminded = append(f.reminded, skipTime)
	return true, nil
}

func (f *fakeSkipper) CurrentPick(context.Context, uuid.UUID) (events.CurrentPick, error) {
	return f.current, nil
}

type recordingScheduler struct {
	scheduled []jobs.Job
}

func (r *recordingScheduler) Schedule(_ context.Context, job jobs.Job) error {
	r.scheduled = append(r.scheduled, job)
	return nil
}

func (r *recordingScheduler) Cancel(context.Context, jobs.Kind, uuid.UUID) error { return nil }

func inProgress(counter int, skipTime time.Time) events.CurrentPick {
	team := uuid.New()
	return events.CurrentPick{
		Status:       models.DivisionStatusInProgress,
		DraftCounter: counter,
		TeamID:       &team,
		SkipTime:     &skipTime,
	}
}

func newTestHandler(skipper *fakeSkipper) (*SkipHandler, *recordingScheduler) {
	sched := &recordingScheduler{}
	return NewSkipHandler(skipper, sched, clockwork.NewFakeClockAt(start), nil), sched
}

func TestSkipHandler_SkippedDoesNotRetry(t *testing.T) {
	skipper := &fakeSkipper{skipped: true, current: inProgress(4, start.Add(time.Hour))}
	h, sched := newTestHandler(skipper)

	err := h.Handle(context.Background(), skipJob(uuid.New(), start))
	require.NoError(t, err)
	assert.Equal(t, 1, skipper.skipCalls)
	assert.Empty(t, sched.scheduled)
}

func TestSkipHandler_RetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		current   events.CurrentPick
		retry     int
		wantRetry bool
	}{
		{
			name:      "skip time far away",
			current:   inProgress(5, start.Add(10*time.Minute)),
			wantRetry: true,
		},
		{
			name:    "skip time within margin",
			current: inProgress(5, start.Add(2*time.Minute)),
		},
		{
			name:      "just outside margin",
			current:   inProgress(5, start.Add(time.Minute+62*time.Second)),
			wantRetry: true,
		},
		{
			name:    "retries exhausted",
			current: inProgress(5, start.Add(10*time.Minute)),
			retry:   jobs.MaxRetries,
		},
		{
			name:    "paused",
			current: events.CurrentPick{Status: models.DivisionStatusPaused, DraftCounter: 5},
		},
		{
			name: "completed",
			current: events.CurrentPick{
				Status:   models.DivisionStatusCompleted,
				SkipTime: func() *time.Time { ts := start.Add(time.Hour); return &ts }(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skipper := &fakeSkipper{current: tt.current}
			h, sched := newTestHandler(skipper)

			job := skipJob(uuid.New(), start)
			job.Payload.Retry = tt.retry
			require.NoError(t, h.Handle(context.Background(), job))

			if !tt.wantRetry {
				assert.Empty(t, sched.scheduled)
				return
			}
			require.Len(t, sched.scheduled, 1)
			next := sched.scheduled[0]
			assert.Equal(t, jobs.KindSkipPick, next.Kind)
			assert.Equal(t, job.DivisionID, next.DivisionID)
			assert.Equal(t, start.Add(time.Minute), next.RunAt)
			assert.Equal(t, tt.current.DraftCounter, next.Payload.DraftCounter)
			assert.Equal(t, *tt.current.SkipTime, next.Payload.SkipTime)
			assert.Equal(t, *tt.current.TeamID, next.Payload.TeamID)
			assert.Equal(t, tt.retry+1, next.Payload.Retry)
			assert.NotEqual(t, job.ID, next.ID)
		})
	}
}

func TestSkipHandler_ErrorStillRetries(t *testing.T) {
	boom := errors.New("boom")
	skipper := &fakeSkipper{skipErr: boom, current: inProgress(2, start.Add(time.Hour))}
	h, sched := newTestHandler(skipper)

	err := h.Handle(context.Background(), skipJob(uuid.New(), start))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, sched.scheduled, 1)
}

func TestSkipHandler_Reminder(t *testing.T) {
	skipper := &fakeSkipper{}
	h, sched := newTestHandler(skipper)

	skipAt := start.Add(time.Hour)
	job := jobs.New(jobs.KindSkipReminder, uuid.New(), start, jobs.Payload{SkipTime: skipAt})
	require.NoError(t, h.Handle(context.Background(), job))

	assert.Equal(t, []time.Time{skipAt}, skipper.reminded)
	assert.Equal(t, 0, skipper.skipCalls)
	assert.Empty(t, sched.scheduled)
}

func TestSkipHandler_UnknownKind(t *testing.T) {
	h, _ := newTestHandler(&fakeSkipper{})
	err := h.Handle(context.Background(), jobs.New("bogus", uuid.New(), start, jobs.Payload{}))
	assert.Error(t, err)
}

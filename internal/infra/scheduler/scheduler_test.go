package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"birthday_reminder/internal/app"
	"birthday_reminder/internal/domain/birthday"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu          sync.Mutex
	references  []birthday.Date
	hadDeadline bool
	report      *app.RunReport
	err         error
}

func (f *fakeRunner) Run(ctx context.Context, reference birthday.Date) (*app.RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.references = append(f.references, reference)
	_, f.hadDeadline = ctx.Deadline()
	if f.report == nil {
		return &app.RunReport{Reference: reference}, f.err
	}
	return f.report, f.err
}

func TestReminderScheduler_StartRejectsInvalidSpec(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	s := NewReminderScheduler(&fakeRunner{}, time.UTC, "not a cron spec", time.Minute, logrus.NewEntry(logger))

	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a cron spec")
}

func TestReminderScheduler_StartAndStop(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	s := NewReminderScheduler(&fakeRunner{}, time.UTC, "0 9 * * *", time.Minute, logrus.NewEntry(logger))

	require.NoError(t, s.Start())
	s.Stop()
}

func TestReminderScheduler_RunOnceUsesZoneToday(t *testing.T) {
	loc, err := time.LoadLocation("Pacific/Kiritimati")
	require.NoError(t, err)

	runner := &fakeRunner{}
	logger, _ := logtest.NewNullLogger()
	s := NewReminderScheduler(runner, loc, "0 9 * * *", time.Minute, logrus.NewEntry(logger))

	s.RunOnce()

	require.Len(t, runner.references, 1)
	assert.Equal(t, birthday.Today(loc), runner.references[0])
	assert.True(t, runner.hadDeadline)
}

func TestReminderScheduler_RunOnceLogsFailures(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	aborted := &fakeRunner{err: errors.New("state store unavailable")}
	NewReminderScheduler(aborted, time.UTC, "0 9 * * *", time.Minute, logrus.NewEntry(logger)).RunOnce()
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	partial := &fakeRunner{report: &app.RunReport{
		Failed: []app.FailedDelivery{{Err: errors.New("webhook returned 500")}},
	}}
	NewReminderScheduler(partial, time.UTC, "0 9 * * *", time.Minute, logrus.NewEntry(logger)).RunOnce()
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

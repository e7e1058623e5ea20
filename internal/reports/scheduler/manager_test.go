package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kontax/portal-backend/pkg/storage"
)

func noop(context.Context) error { return nil }

func TestValidateCronExpression(t *testing.T) {
	assert.NoError(t, ValidateCronExpression("0 3 1 * *"))
	assert.NoError(t, ValidateCronExpression("@monthly"))
	assert.Error(t, ValidateCronExpression("0 0 3 1 * *"))
	assert.Error(t, ValidateCronExpression("every month"))
}

func TestNextExecution(t *testing.T) {
	from := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	next, err := NextExecution("0 3 1 * *", "America/Santiago", from)
	require.NoError(t, err)

	santiago, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	local := next.In(santiago)
	assert.Equal(t, time.April, local.Month())
	assert.Equal(t, 1, local.Day())
	assert.Equal(t, 3, local.Hour())

	_, err = NextExecution("bogus", "UTC", from)
	assert.Error(t, err)
}

func TestScheduleManager_AddRemove(t *testing.T) {
	m := NewScheduleManager(zap.NewNop())

	err := m.AddSchedule(Schedule{Name: "bad", CronExpression: "nope"}, noop)
	require.Error(t, err)
	assert.Equal(t, 0, m.GetActiveJobs())

	require.NoError(t, m.AddSchedule(Schedule{Name: "archive", CronExpression: "0 3 1 * *", Timezone: "America/Santiago"}, noop))
	require.NoError(t, m.AddSchedule(Schedule{Name: "archive", CronExpression: "0 4 1 * *", Timezone: "Mars/Olympus"}, noop))
	assert.Equal(t, 1, m.GetActiveJobs())

	status, err := m.GetJobStatus("archive")
	require.NoError(t, err)
	assert.Equal(t, "archive", status.Name)

	m.RemoveSchedule("archive")
	assert.Equal(t, 0, m.GetActiveJobs())

	_, err = m.GetJobStatus("archive")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduleManager_StartStop(t *testing.T) {
	m := NewScheduleManager(zap.NewNop())
	require.NoError(t, m.AddSchedule(Schedule{Name: "archive", CronExpression: "@monthly"}, noop))

	require.NoError(t, m.Start())
	assert.Error(t, m.Start())

	status, err := m.GetJobStatus("archive")
	require.NoError(t, err)
	assert.True(t, status.NextRun.After(time.Now()))

	m.Stop()
	m.Stop()
}

func TestScheduleManager_RunAppliesTimeout(t *testing.T) {
	m := NewScheduleManager(zap.NewNop())

	var deadlineSet bool
	m.run(Schedule{Name: "archive", Timeout: time.Minute}, func(ctx context.Context) error {
		_, deadlineSet = ctx.Deadline()
		return errors.New("logged, not propagated")
	})
	assert.True(t, deadlineSet)
}

func TestRegisterArchiveJob(t *testing.T) {
	m := NewScheduleManager(zap.NewNop())
	e := NewExecutor(new(mockSource), storage.NewMemoryClient(), zap.NewNop(), testConfig())

	require.NoError(t, RegisterArchiveJob(m, e, "0 3 1 * *", "America/Santiago"))
	assert.Equal(t, 1, m.GetActiveJobs())

	assert.Error(t, RegisterArchiveJob(m, e, "not cron", "UTC"))
}

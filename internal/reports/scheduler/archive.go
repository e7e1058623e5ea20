package scheduler

import (
	"context"
	"time"
)

// ArchiveJobName is the schedule name of the monthly ledger archive
const ArchiveJobName = "ledger-archive"

// RegisterArchiveJob schedules the archive of the last closed period on m
func RegisterArchiveJob(m *ScheduleManager, executor *Executor, cronExpr, timezone string) error {
	return m.AddSchedule(Schedule{
		Name:           ArchiveJobName,
		CronExpression: cronExpr,
		Timezone:       timezone,
		Timeout:        executor.config.Timeout + time.Minute,
	}, func(ctx context.Context) error {
		_, err := executor.Execute(ctx, executor.LastClosedPeriod())
		return err
	})
}

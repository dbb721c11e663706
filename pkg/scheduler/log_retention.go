package scheduler

import (
	"time"

	"face-insight-api/pkg/logger"
)

const (
	LogRetentionJobID = "log-retention"
	LogRetentionCron  = "0 3 * * *"
)

// LogPruner removes log files older than a retention window.
type LogPruner interface {
	PruneLogs(retention time.Duration) (int, error)
}

// PruneLogsTask returns the task body of the log retention job.
func PruneLogsTask(pruner LogPruner, retentionDays int) func() {
	retention := time.Duration(retentionDays) * 24 * time.Hour

	return func() {
		removed, err := pruner.PruneLogs(retention)
		if err != nil {
			logger.SchedulerError("log_retention_failed", "Log retention job failed", err, map[string]interface{}{
				"removed": removed,
			})
			return
		}
		logger.Scheduler("log_retention_done", "Log retention job completed", map[string]interface{}{
			"removed":        removed,
			"retention_days": retentionDays,
		})
	}
}

// ScheduleLogRetention registers the daily log retention job. A retention of
// zero days keeps logs forever and schedules nothing.
func ScheduleLogRetention(s EventScheduler, pruner LogPruner, retentionDays int) error {
	if retentionDays <= 0 {
		logger.SchedulerWarn("log_retention_disabled", "Log retention disabled", nil)
		return nil
	}
	return s.AddJob(LogRetentionJobID, LogRetentionCron, PruneLogsTask(pruner, retentionDays))
}

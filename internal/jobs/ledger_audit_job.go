package jobs

import (
	"context"
	"log/slog"

	"deliverytasks/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

// DefaultAuditSchedule runs the audit once a minute.
const DefaultAuditSchedule = "0 * * * * *"

// LedgerAuditor finds tasks whose state history breaks the ledger rules.
type LedgerAuditor interface {
	Handle(ctx context.Context, query queries.AuditLedgerQuery) ([]queries.LedgerViolation, error)
}

// LedgerAuditJob periodically checks every task's state history and logs
// each violation it finds. It never repairs data.
type LedgerAuditJob struct {
	auditor  LedgerAuditor
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewLedgerAuditJob creates the audit job. schedule is a six-field cron
// expression (seconds first); an empty schedule means DefaultAuditSchedule.
func NewLedgerAuditJob(auditor LedgerAuditor, schedule string, logger *slog.Logger) *LedgerAuditJob {
	if schedule == "" {
		schedule = DefaultAuditSchedule
	}
	return &LedgerAuditJob{
		auditor:  auditor,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "ledger_audit_job"),
	}
}

// Start schedules the audit. It fails on an unparsable schedule.
func (j *LedgerAuditJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Ledger audit job started", "schedule", j.schedule)
	return nil
}

// Run performs one audit pass and returns the number of violations found.
func (j *LedgerAuditJob) Run(ctx context.Context) int {
	violations, err := j.auditor.Handle(ctx, queries.NewAuditLedgerQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Ledger audit failed", "error", err)
		return 0
	}

	for _, v := range violations {
		j.logger.WarnContext(ctx, "Task ledger violation",
			"task_id", v.TaskID.String(),
			"reason", v.Reason)
	}
	if len(violations) > 0 {
		j.logger.WarnContext(ctx, "Ledger audit finished", "violations", len(violations))
	}
	return len(violations)
}

// Stop stops scheduling and waits for a running audit to finish.
func (j *LedgerAuditJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Ledger audit job stopped")
}

// Package jobs provides scheduled background tasks for the delivery task service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. LedgerAuditJob - Re-checks every task's state history against the
// lifecycle rules: sequences run 1..n without gaps, the first record is
// "new", each step is an allowed transition and the version equals the
// record count. Violations are logged as warnings; nothing is repaired.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(auditHandler, "0 * * * * *", logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules are six-field cron expressions with a leading seconds field.
// The default, DefaultAuditSchedule, runs once a minute.
package jobs

// Package retention removes run-log entries older than a configured number
// of days, either on demand with Prune or on a cron schedule:
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    Days:          30,
//	    PruneSchedule: "0 3 * * *",
//	})
//	if err := pruner.Start(ctx); err != nil {
//	    return err
//	}
//	defer pruner.Stop()
//
// When ArchiveDir is set the entries are exported as JSON before deletion.
package retention

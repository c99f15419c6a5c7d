// Package scheduler runs the checks of a phase plan.
//
// Sequential plans run checks one after another in declared order. Parallel
// plans start one goroutine per check and join them; each goroutine writes
// its own result slot, so output order is the declared order either way.
// A failing or panicking check is recorded on its own FunctionResult and
// never stops the other checks. The scheduler applies no timeout of its own;
// the context is handed to the check function and deadlines belong to the
// detector clients.
package scheduler

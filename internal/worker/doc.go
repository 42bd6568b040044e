// Package worker implements the background processing pool that drains
// the insight job queue. A configurable number of workers each loop:
// claim a job, reload the owner's debts, recompute the portfolio
// fingerprint, run the generator, and persist the result to the cache.
// A separate maintenance monitor reaps stale processing jobs and purges
// expired cache entries on an interval.
package worker

// Package reaper releases everything a job acquired, exactly once.
//
// A Reaper collects cleanup actions while the job runs: paths to remove,
// engine caches to release and arbitrary functions. Close runs them all even
// when some fail, and later calls to Close are no-ops.
package reaper

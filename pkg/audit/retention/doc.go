// Package retention prunes audit records older than the configured number
// of days, on a robfig/cron schedule or on demand (imagery audit prune).
package retention

// Package runstore persists pipeline run history to SQLite: one row per
// resolution run with its counts, the final report, and the strategic
// query list, read back by the runs CLI commands.
package runstore

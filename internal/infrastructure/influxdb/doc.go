// Package influxdb provides an optional time-series sink for sales metrics.
//
// When enabled in config.yaml, each checkout commit writes a point with the
// sale totals and item count, and peripheral connect/disconnect transitions
// are recorded for uptime charting. The ledger in SQLite remains the source
// of truth; this is reporting only.
package influxdb

package repository

import (
	"time"

	"opsboard/pkg/metrics"
)

// observe records query latency, e.g. defer observe(time.Now(), "insert", "tasks").
func observe(start time.Time, operation, table string) {
	metrics.RecordDBQueryDuration(operation, table, time.Since(start))
}

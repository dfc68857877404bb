package metrics

import "sync/atomic"

// RunMetrics счетчики одного запуска адаптера.
type RunMetrics struct {
	Processed atomic.Int32
	Imported  atomic.Int32
	Skipped   atomic.Int32
}

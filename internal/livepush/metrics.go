package livepush

import "expvar"

var (
	metricPushNoticesTotal      = expvar.NewInt("live_push_notices_total")
	metricPushThrottledTotal    = expvar.NewInt("live_push_throttled_total")
	metricPushQueuedTotal       = expvar.NewInt("live_push_queued_total")
	metricPushDroppedTotal      = expvar.NewInt("live_push_dropped_total")
	metricPushRetryTotal        = expvar.NewInt("live_push_retry_total")
	metricPushRetryDroppedTotal = expvar.NewInt("live_push_retry_dropped_total")
	metricPushSentTotal         = expvar.NewInt("live_push_sent_total")
	metricPushFailedTotal       = expvar.NewInt("live_push_failed_total")
	metricPushCircuitOpenTotal  = expvar.NewInt("live_push_circuit_open_total")
	metricPushQueueLen          = expvar.NewInt("live_push_queue_len")
)

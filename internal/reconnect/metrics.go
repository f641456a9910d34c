package reconnect

import "expvar"

var (
	metricRetriesScheduledTotal = expvar.NewInt("reconnect_retries_scheduled_total")
	metricGaveUpTotal           = expvar.NewInt("reconnect_gave_up_total")
)

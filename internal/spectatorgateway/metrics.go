package spectatorgateway

import "expvar"

var (
	metricSSEConnectionsTotal  = expvar.NewInt("live_sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("live_sse_connections_active")
	metricSSESnapshotsSent     = expvar.NewInt("live_sse_snapshots_sent_total")
)

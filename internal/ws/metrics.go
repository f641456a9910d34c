package ws

import "expvar"

var (
	metricConnectionsTotal  = expvar.NewInt("mock_ws_connections_total")
	metricConnectionsActive = expvar.NewInt("mock_ws_connections_active")
	metricFramesReceived    = expvar.NewInt("mock_ws_frames_received_total")
	metricBroadcastTotal    = expvar.NewInt("mock_ws_broadcast_total")
	metricSendDropped       = expvar.NewInt("mock_ws_send_dropped_total")
	metricPushRejected      = expvar.NewInt("mock_ws_push_rejected_total")
)

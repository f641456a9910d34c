package transport

import "expvar"

var (
	metricConnectionsActive   = expvar.NewInt("transport_connections_active")
	metricDialErrorsTotal     = expvar.NewInt("transport_dial_errors_total")
	metricFramesReceivedTotal = expvar.NewInt("transport_frames_received_total")
	metricFramesSentTotal     = expvar.NewInt("transport_frames_sent_total")
)

package session

import "expvar"

var (
	metricConnectAttemptsTotal = expvar.NewInt("session_connect_attempts_total")
	metricOpensTotal           = expvar.NewInt("session_opens_total")
	metricClosesTotal          = expvar.NewInt("session_closes_total")
	metricFramesTotal          = expvar.NewInt("session_frames_total")
	metricDecodeErrorsTotal    = expvar.NewInt("session_decode_errors_total")
	metricUnknownKindsTotal    = expvar.NewInt("session_unknown_kinds_total")
	metricCommandsSentTotal    = expvar.NewInt("session_commands_sent_total")
	metricCommandsDroppedTotal = expvar.NewInt("session_commands_dropped_total")
	metricPanicsRecoveredTotal = expvar.NewInt("session_panics_recovered_total")
	metricConnected            = expvar.NewInt("session_connected")
)

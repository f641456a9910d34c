package httptransport

import "expvar"

var (
	metricConnectRequests    = expvar.NewInt("api_connect_requests_total")
	metricDisconnectRequests = expvar.NewInt("api_disconnect_requests_total")
	metricCommandsSent       = expvar.NewInt("api_commands_sent_total")
	metricCommandErrors      = expvar.NewInt("api_command_errors_total")
)

package heartbeat

import "expvar"

var (
	metricProbesTotal        = expvar.NewInt("heartbeat_probes_total")
	metricConfirmationsTotal = expvar.NewInt("heartbeat_confirmations_total")
)

package snapshot

import "expvar"

var (
	metricFoldsTotal = expvar.NewInt("snapshot_folds_total")
	metricObservers  = expvar.NewInt("snapshot_observers_active")
)

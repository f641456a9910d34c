package spectatorgateway

import (
	"encoding/json"
	"net/http"
)

func StateHandler(src SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(src.CurrentSnapshot())
	}
}

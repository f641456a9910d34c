package session

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

// NewClientID returns viewer_<unix ms>_<suffix>, where the suffix is the
// lower-cased random part of a monotonic ULID.
func NewClientID(now time.Time) string {
	ulidEntropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), ulidEntropy).String()
	ulidEntropyMu.Unlock()
	return "viewer_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + strings.ToLower(id[10:])
}

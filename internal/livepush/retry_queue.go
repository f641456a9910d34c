package livepush

import (
	"time"

	"cc-live/internal/clock"
)

type retryQueue struct {
	clock clock.Clock
	out   chan<- pushJob
	done  <-chan struct{}
}

func newRetryQueue(c clock.Clock, out chan<- pushJob, done <-chan struct{}) *retryQueue {
	return &retryQueue{clock: c, out: out, done: done}
}

func (q *retryQueue) Enqueue(job pushJob, delay time.Duration) {
	q.clock.AfterFunc(delay, func() {
		select {
		case <-q.done:
		case q.out <- job:
			metricPushQueueLen.Set(int64(len(q.out)))
		}
	})
}

package snapshot

import (
	"sort"
	"sync"
	"sync/atomic"

	"cc-live/internal/codec"
	"cc-live/internal/live"
)

type Observer func(live.Snapshot)

// Store publishes the current snapshot. Apply and Update must be called from
// a single goroutine; Current may be called from any goroutine.
type Store struct {
	capacity int
	current  atomic.Pointer[live.Snapshot]

	mu        sync.Mutex
	nextID    int
	observers map[int]Observer
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = live.DefaultRecentEventsCapacity
	}
	s := &Store{capacity: capacity, observers: map[int]Observer{}}
	s.current.Store(&live.Snapshot{})
	return s
}

// Current returns the latest published snapshot. Callers must treat it as
// read-only; use Clone for a private copy.
func (s *Store) Current() live.Snapshot {
	return *s.current.Load()
}

func (s *Store) Apply(msg codec.Message) live.Snapshot {
	next := FoldCap(s.Current(), msg, s.capacity)
	s.publish(next)
	metricFoldsTotal.Add(1)
	return next
}

// Update publishes a session-local change such as the connected flag.
func (s *Store) Update(fn func(live.Snapshot) live.Snapshot) live.Snapshot {
	next := fn(s.Current())
	s.publish(next)
	return next
}

// Subscribe registers fn to run after every publish, on the publishing
// goroutine. The returned func removes it.
func (s *Store) Subscribe(fn Observer) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers[id] = fn
	s.mu.Unlock()
	metricObservers.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
			metricObservers.Add(-1)
		})
	}
}

func (s *Store) publish(next live.Snapshot) {
	s.current.Store(&next)
	s.mu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Ints(ids)
	for _, id := range ids {
		s.mu.Lock()
		fn, ok := s.observers[id]
		s.mu.Unlock()
		if ok {
			fn(next)
		}
	}
}

package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// Dataset is an immutable snapshot of one completed load.
type Dataset struct {
	ID            string
	Generation    uint64
	Source        string
	Records       []Record
	InvalidFields int
	Fingerprint   uint64
	LoadedAt      time.Time
}

// Store states reported by Status.
const (
	StateLoading = "loading"
	StateReady   = "ready"
	StateFailed  = "failed"
)

// Status describes what the store is serving.
type Status struct {
	State     string
	Current   *Dataset
	LastError error
}

// Store holds the dataset currently served. Datasets are swapped in whole;
// readers never see a partially loaded one. Every load reserves a generation
// with Begin, and a finished load only replaces a dataset from an older
// generation, so the newest load wins regardless of completion order.
type Store struct {
	current atomic.Pointer[Dataset]
	nextGen atomic.Uint64

	mu      sync.Mutex
	lastErr error
	errGen  uint64
}

func NewStore() *Store {
	return &Store{}
}

// Begin reserves the generation for a new load.
func (s *Store) Begin() uint64 {
	return s.nextGen.Add(1)
}

// Latest returns the most recently reserved generation, or 0 before any load.
func (s *Store) Latest() uint64 {
	return s.nextGen.Load()
}

// Current returns the dataset being served, or nil before the first
// successful load.
func (s *Store) Current() *Dataset {
	return s.current.Load()
}

// Publish swaps ds in unless a newer generation is already published. It
// reports whether ds is now current.
func (s *Store) Publish(ds *Dataset) bool {
	for {
		cur := s.current.Load()
		if cur != nil && cur.Generation >= ds.Generation {
			return false
		}
		if s.current.CompareAndSwap(cur, ds) {
			break
		}
	}

	s.mu.Lock()
	if s.errGen <= ds.Generation {
		s.lastErr = nil
		s.errGen = 0
	}
	s.mu.Unlock()
	return true
}

// Fail records the error of load gen, unless a newer load already finished.
func (s *Store) Fail(gen uint64, err error) bool {
	if cur := s.current.Load(); cur != nil && cur.Generation > gen {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.errGen {
		return false
	}
	s.lastErr = err
	s.errGen = gen
	return true
}

// Status reports the served dataset and the most recent load failure.
func (s *Store) Status() Status {
	cur := s.current.Load()
	s.mu.Lock()
	err := s.lastErr
	s.mu.Unlock()

	st := Status{Current: cur, LastError: err}
	switch {
	case cur != nil:
		st.State = StateReady
	case err != nil:
		st.State = StateFailed
	default:
		st.State = StateLoading
	}
	return st
}

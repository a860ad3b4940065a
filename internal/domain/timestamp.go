package domain

import (
	"sync"
	"time"
)

// Stamper issues item timestamps in Unix milliseconds. Every value it returns
// is larger than the previous one, so calls within the same millisecond still
// get distinct timestamps. The zero value is ready to use.
type Stamper struct {
	mu   sync.Mutex
	last int64
}

func (s *Stamper) Next(now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := now.UnixMilli()
	if ts <= s.last {
		ts = s.last + 1
	}
	s.last = ts
	return ts
}

package usecase

import (
	"sync"

	"github.com/fastygo/storefront/domain"
)

// Sequencer hands out per-key tickets so a response to an older request can be
// recognised once a newer request for the same key has started.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Ticket identifies one request for a key.
type Ticket struct {
	seq *Sequencer
	key string
	n   uint64
}

// Begin supersedes every earlier ticket for key.
func (s *Sequencer) Begin(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[key]++
	return Ticket{seq: s, key: key, n: s.latest[key]}
}

// Current reports whether t is still the newest ticket for its key.
func (t Ticket) Current() bool {
	if t.seq == nil {
		return false
	}
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()
	return t.seq.latest[t.key] == t.n
}

// Check returns domain.ErrStaleResponse when t has been superseded.
func (t Ticket) Check() error {
	if t.Current() {
		return nil
	}
	return domain.ErrStaleResponse
}

package pipeline

import (
	"context"
	"sync"
)

// result is the outcome of encoding one arena.
type result struct {
	chunk []byte
	err   error
}

// resultSlots holds encode results by sequence number until the drain takes them.
//
// Each slot is a channel with capacity one. A worker writes a slot exactly
// once and the drain reads it exactly once, so put never blocks.
type resultSlots struct {
	mu    sync.Mutex
	slots map[int]chan result
}

func newResultSlots() *resultSlots {
	return &resultSlots{slots: make(map[int]chan result)}
}

// slot returns the channel of seq, creating it on first use by either side.
func (s *resultSlots) slot(seq int) chan result {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.slots[seq]
	if !ok {
		ch = make(chan result, 1)
		s.slots[seq] = ch
	}

	return ch
}

func (s *resultSlots) put(seq int, r result) {
	s.slot(seq) <- r
}

// take waits for the result of seq.
//
// Returns:
//   - bool: false if done was closed and seq has no result, or ctx ended first
func (s *resultSlots) take(ctx context.Context, seq int, done <-chan struct{}) (result, bool) {
	ch := s.slot(seq)

	select {
	case r := <-ch:
		s.remove(seq)
		return r, true
	case <-ctx.Done():
		return result{}, false
	case <-done:
		// every worker has exited; the slot is either filled already or never will be
		select {
		case r := <-ch:
			s.remove(seq)
			return r, true
		default:
			s.remove(seq)
			return result{}, false
		}
	}
}

func (s *resultSlots) remove(seq int) {
	s.mu.Lock()
	delete(s.slots, seq)
	s.mu.Unlock()
}

// pending returns the number of slots created and not yet taken.
func (s *resultSlots) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.slots)
}

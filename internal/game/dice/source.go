package dice

import (
	"crypto/rand"
	"math/big"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, n) for any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// SeqSource replays a fixed sequence of raw values, wrapping around when exhausted.
// Each value is reduced modulo n so any sequence is valid for any n.
//
// Invariant: Safe for concurrent use.
type SeqSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSeqSource returns a Source that yields values in order.
//
// Precondition: len(values) > 0 and every value >= 0.
func NewSeqSource(values ...int) *SeqSource {
	if len(values) == 0 {
		panic("dice: NewSeqSource requires at least one value")
	}
	return &SeqSource{values: values}
}

// Intn returns the next value of the sequence modulo n.
//
// Precondition: n > 0.
func (s *SeqSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

// Calls reports how many values have been drawn.
func (s *SeqSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Package otp keeps short-lived one-time codes in process memory.
//
// A Store holds at most one live code per subject. Issuing a new code for a
// subject replaces the previous one, and a successful Verify consumes it.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

type Result int

const (
	NotFound Result = iota
	InvalidOrExpired
	Verified
)

func (r Result) String() string {
	switch r {
	case Verified:
		return "verified"
	case InvalidOrExpired:
		return "invalid_or_expired"
	default:
		return "not_found"
	}
}

const (
	codeMin = 100000
	codeMax = 999999
)

type record struct {
	code     string
	issuedAt time.Time
	expires  time.Time
}

type Store struct {
	mu      sync.Mutex
	records map[string]record
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		records: make(map[string]record),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Issue mints a fresh 6-digit code for subject and returns it.
func (s *Store) Issue(subject string) string {
	code := newCode()
	now := s.now()

	s.mu.Lock()
	s.records[subject] = record{code: code, issuedAt: now, expires: now.Add(s.ttl)}
	s.mu.Unlock()

	return code
}

func (s *Store) Verify(subject, code string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[subject]
	if !ok {
		return NotFound
	}
	if rec.code != code || !s.now().Before(rec.expires) {
		return InvalidOrExpired
	}
	delete(s.records, subject)
	return Verified
}

// Sweep drops expired records and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for subject, rec := range s.records {
		if !now.Before(rec.expires) {
			delete(s.records, subject)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func newCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(fmt.Sprintf("otp: read random: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin)
}

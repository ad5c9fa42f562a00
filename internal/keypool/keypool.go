// Package keypool rotates API credentials for the LLM backend.
//
// A pool has one primary credential and an ordered list of extra credentials.
// The cursor starts on the primary (-1) and each rotation moves it to the next
// extra credential. Rotation does not wrap: running past the last credential
// reports exhaustion.
package keypool

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrNoCredentials = errors.New("no api credentials configured")

const storeTimeout = 500 * time.Millisecond

// Policy decides when to rotate before a failure forces it. Zero values disable
// the corresponding trigger.
type Policy struct {
	MaxRequests int
	MaxAge      time.Duration
}

type Options struct {
	Policy Policy
	// Store defaults to an in-memory cursor without expiry.
	Store  CursorStore
	Logger *zap.Logger
	Now    func() time.Time
}

// Pool is safe for concurrent use.
type Pool struct {
	mu sync.Mutex

	primary string
	extras  []string
	store   CursorStore
	policy  Policy
	logger  *zap.Logger
	now     func() time.Time

	// cursor is the last value read from or written to the store.
	cursor       int
	requests     int
	lastRotation time.Time
}

// New builds a pool. Duplicate and empty credentials are dropped; when primary
// is empty the first extra credential takes its place.
func New(primary string, extras []string, opts Options) (*Pool, error) {
	keys := dedupe(append([]string{primary}, extras...))
	if len(keys) == 0 {
		return nil, ErrNoCredentials
	}

	if opts.Store == nil {
		opts.Store = NewMemoryStore(0)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Pool{
		primary:      keys[0],
		extras:       keys[1:],
		store:        opts.Store,
		policy:       opts.Policy,
		logger:       opts.Logger,
		now:          opts.Now,
		cursor:       -1,
		lastRotation: opts.Now(),
	}, nil
}

// Size is the number of extra credentials.
func (p *Pool) Size() int {
	return len(p.extras)
}

// Current returns the credential in use.
func (p *Pool) Current() string {
	key, _ := p.CurrentWithIndex()
	return key
}

// CurrentWithIndex returns the credential in use and its position (-1 for the primary).
func (p *Pool) CurrentWithIndex() (string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cursor := p.loadLocked()
	return p.keyAt(cursor), cursor
}

// Rotate moves to the next credential. It returns false once the pool is
// exhausted, leaving the cursor where it was.
func (p *Pool) Rotate() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.loadLocked() + 1
	if next >= len(p.extras) {
		return "", false
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := p.store.Save(ctx, next); err != nil {
		p.logger.Warn("persisting key rotation cursor failed; keeping it locally",
			zap.Int("cursor", next),
			zap.Error(err),
		)
	}
	p.cursor = next

	p.logger.Debug("rotated api key", zap.Int("key_index", next), zap.Int("pool_size", len(p.extras)))
	return p.extras[next], true
}

// ShouldRotatePreemptively reports whether the policy asks for a rotation
// before the next request. It is false when no further credential exists.
func (p *Pool) ShouldRotatePreemptively() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loadLocked()+1 >= len(p.extras) {
		return false
	}
	if p.policy.MaxRequests > 0 && p.requests >= p.policy.MaxRequests {
		return true
	}
	if p.policy.MaxAge > 0 && p.now().Sub(p.lastRotation) >= p.policy.MaxAge {
		return true
	}
	return false
}

// MarkRotated resets the counters the preemptive policy tracks.
func (p *Pool) MarkRotated() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = 0
	p.lastRotation = p.now()
}

// RecordRequest counts one request against the current credential.
func (p *Pool) RecordRequest() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests++
}

func (p *Pool) loadLocked() int {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	cursor, err := p.store.Load(ctx)
	if err != nil {
		p.logger.Warn("loading key rotation cursor failed; using last known value",
			zap.Int("cursor", p.cursor),
			zap.Error(err),
		)
		return p.cursor
	}

	if cursor < -1 || cursor >= len(p.extras) {
		cursor = -1
	}
	p.cursor = cursor
	return cursor
}

func (p *Pool) keyAt(cursor int) string {
	if cursor < 0 {
		return p.primary
	}
	return p.extras[cursor]
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

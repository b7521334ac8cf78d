// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/poiesic/attestor/core"
)

// ErrInvalidConfig is returned when a cache is created with an unusable configuration.
var ErrInvalidConfig = errors.New("invalid cache config")

// Clock supplies the current time. Tests inject a fake to drive expiry.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config controls entry lifetime and key derivation.
type Config struct {
	// TTL is how long a verdict stays valid after it is written.
	TTL time.Duration

	// PrefixLength is the number of question runes that take part in the key.
	// Questions that only differ beyond this prefix share entries.
	PrefixLength int
}

// DefaultConfig returns a one hour TTL keyed on the first 200 runes of a question.
func DefaultConfig() Config {
	return Config{
		TTL:          time.Hour,
		PrefixLength: 200,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("TTL must be positive"))
	}
	if c.PrefixLength <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("PrefixLength must be positive"))
	}
	return nil
}

type entryKey struct {
	fingerprint string
	documentID  string
}

type entry struct {
	verdict   core.MatchVerdict
	createdAt time.Time
}

// EvidenceCache memoizes match verdicts per (question prefix, document).
// Entries expire lazily: a stale entry is reported as a miss and replaced by
// the next Put. It is safe for concurrent use; concurrent writers to the same
// key resolve to the last write.
type EvidenceCache struct {
	config  Config
	clock   Clock
	mu      sync.RWMutex
	entries map[entryKey]entry
}

// Option configures an EvidenceCache.
type Option func(*EvidenceCache)

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(c *EvidenceCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New creates an empty EvidenceCache.
func New(config Config, opts ...Option) (*EvidenceCache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := &EvidenceCache{
		config:  config,
		clock:   systemClock{},
		entries: make(map[entryKey]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the live verdict for question and documentID, if any.
func (c *EvidenceCache) Get(ctx context.Context, question, documentID string) (core.MatchVerdict, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.MatchVerdict{}, false, err
	}
	key := c.key(question, documentID)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.expired(e) {
		return core.MatchVerdict{}, false, nil
	}
	return e.verdict, true, nil
}

// Put records a verdict for question and documentID, replacing any previous entry.
func (c *EvidenceCache) Put(ctx context.Context, question, documentID string, verdict core.MatchVerdict) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := c.key(question, documentID)
	now := c.clock.Now()

	c.mu.Lock()
	c.entries[key] = entry{verdict: verdict, createdAt: now}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet overwritten.
func (c *EvidenceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *EvidenceCache) key(question, documentID string) entryKey {
	return entryKey{
		fingerprint: core.QuestionFingerprint(question, c.config.PrefixLength),
		documentID:  documentID,
	}
}

func (c *EvidenceCache) expired(e entry) bool {
	return c.clock.Now().Sub(e.createdAt) >= c.config.TTL
}

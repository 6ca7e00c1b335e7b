// Package scanner tells barcode-scanner keystroke bursts apart from human
// typing using nothing but the time between keys.
package scanner

import (
	"sync"
	"time"

	"github.com/sangkips/tillpoint/internal/clock"
)

// DefaultThreshold is the widest gap between keys still treated as a scanner.
const DefaultThreshold = 50 * time.Millisecond

// Enter terminates a scan.
const Enter = '\n'

// Keystroke is one raw key event.
type Keystroke struct {
	Key rune
	// InputFocused is true when a text input owns focus; such keys belong
	// to that input and are ignored here.
	InputFocused bool
}

// IsTerminator reports whether r ends a scan.
func IsTerminator(r rune) bool {
	return r == '\n' || r == '\r'
}

// Classifier is safe for concurrent use.
type Classifier struct {
	mu        sync.Mutex
	clock     clock.Clock
	threshold time.Duration
	buffer    []rune
	last      time.Time
	seen      bool
}

func NewClassifier(c clock.Clock, threshold time.Duration) *Classifier {
	if c == nil {
		c = clock.System()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{clock: c, threshold: threshold}
}

// Observe feeds one keystroke stamped with the classifier's clock.
func (c *Classifier) Observe(k Keystroke) (string, bool) {
	return c.ObserveAt(k, c.clock.Now())
}

// ObserveAt feeds one keystroke with an explicit timestamp. It returns the
// completed token when k terminates a non-empty burst.
//
// The gap check runs before anything else: a key arriving at or beyond the
// threshold after its predecessor clears the buffer and then starts a new
// burst of its own, so the first character of a scan is kept.
func (c *Classifier) ObserveAt(k Keystroke, at time.Time) (string, bool) {
	if k.InputFocused {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	gap := at.Sub(c.last)
	fast := c.seen && gap > 0 && gap < c.threshold
	c.last = at
	c.seen = true

	if !fast {
		// Anything typed before the gap is treated as manual noise. The
		// slow key itself may be the first character of a scan, so it is
		// kept below; a lone human key never reaches Enter fast enough to
		// be emitted.
		c.buffer = c.buffer[:0]
	}

	if IsTerminator(k.Key) {
		if len(c.buffer) == 0 {
			return "", false
		}
		token := string(c.buffer)
		c.buffer = c.buffer[:0]
		return token, true
	}

	c.buffer = append(c.buffer, k.Key)
	return "", false
}

// Buffer returns the pending characters.
func (c *Classifier) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.buffer)
}

func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer = c.buffer[:0]
	c.seen = false
}

func (c *Classifier) Threshold() time.Duration {
	return c.threshold
}

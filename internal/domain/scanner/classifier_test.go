package scanner

import (
	"testing"
	"time"

	"github.com/sangkips/tillpoint/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func typeBurst(c *Classifier, fc *clock.FakeClock, s string, gap time.Duration) (string, bool) {
	var (
		token string
		ok    bool
	)
	for _, r := range s {
		fc.Advance(gap)
		token, ok = c.Observe(Keystroke{Key: r})
	}
	return token, ok
}

func TestClassifier_ScanBurstEmitsToken(t *testing.T) {
	fc := clock.NewFakeClock(epoch)
	c := NewClassifier(fc, DefaultThreshold)

	token, ok := typeBurst(c, fc, "0123456789012\n", 5*time.Millisecond)

	require.True(t, ok)
	assert.Equal(t, "0123456789012", token)
	assert.Empty(t, c.Buffer())
}

func TestClassifier_HumanTypingNeverEmits(t *testing.T) {
	fc := clock.NewFakeClock(epoch)
	c := NewClassifier(fc, DefaultThreshold)

	_, ok := typeBurst(c, fc, "milk\n", 180*time.Millisecond)

	assert.False(t, ok)
	assert.Empty(t, c.Buffer())
}

func TestClassifier_SlowKeyClearsBuffer(t *testing.T) {
	fc := clock.NewFakeClock(epoch)
	c := NewClassifier(fc, DefaultThreshold)

	_, _ = typeBurst(c, fc, "12345", 10*time.Millisecond)
	require.Equal(t, "12345", c.Buffer())

	fc.Advance(DefaultThreshold)
	_, ok := c.Observe(Keystroke{Key: '9'})
	assert.False(t, ok)
	assert.Equal(t, "9", c.Buffer(), "a gap at the threshold drops the earlier burst")
}

func TestClassifier_ScanAfterTypingKeepsFirstDigit(t *testing.T) {
	fc := clock.NewFakeClock(epoch)
	c := NewClassifier(fc, DefaultThreshold)

	_, ok := typeBurst(c, fc, "ab", 200*time.Millisecond)
	require.False(t, ok)

	fc.Advance(time.Second)
	token, ok := typeBurst(c, fc, "7612345678900\n", 4*time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, "7612345678900", token, "typed noise is dropped, the scan is whole")
}

func TestClassifier_SlowEnterDropsBurst(t *testing.T) {
	fc := clock.NewFakeClock(epoch)
	c := NewClassifier(fc, DefaultThreshold)

	_, _ = typeBurst(c, fc, "4006381333931", 8*time.Millisecond)
	fc.Advance(300 * time.Millisecond)
	_, ok := c.Observe(Keystroke{Key: Enter})

	assert.False(t, ok)
	assert.Empty(t, c.Buffer())
}

func TestClassifier_FocusedInputIgnored(t *testing.T) {
	fc := clock.NewFakeClock(epoch)
	c := NewClassifier(fc, DefaultThreshold)

	_, _ = typeBurst(c, fc, "77", 5*time.Millisecond)
	fc.Advance(5 * time.Millisecond)
	_, ok := c.Observe(Keystroke{Key: 'x', InputFocused: true})
	assert.False(t, ok)

	fc.Advance(5 * time.Millisecond)
	token, ok := c.Observe(Keystroke{Key: '\r'})
	require.True(t, ok)
	assert.Equal(t, "77", token)
}

func TestClassifier_EnterOnEmptyBufferIgnored(t *testing.T) {
	fc := clock.NewFakeClock(epoch)
	c := NewClassifier(fc, DefaultThreshold)

	fc.Advance(time.Millisecond)
	_, ok := c.Observe(Keystroke{Key: Enter})
	assert.False(t, ok)
	fc.Advance(time.Millisecond)
	_, ok = c.Observe(Keystroke{Key: Enter})
	assert.False(t, ok)
}

func TestClassifier_SameInstantDoesNotCount(t *testing.T) {
	fc := clock.NewFakeClock(epoch)
	c := NewClassifier(fc, DefaultThreshold)

	_, _ = c.Observe(Keystroke{Key: 'a'})
	_, _ = c.Observe(Keystroke{Key: 'b'})

	assert.Equal(t, "b", c.Buffer(), "zero gap is not a machine-speed gap")
}

func TestClassifier_ObserveAtAndThreshold(t *testing.T) {
	c := NewClassifier(nil, 0)
	assert.Equal(t, DefaultThreshold, c.Threshold())

	c = NewClassifier(nil, 20*time.Millisecond)
	at := epoch
	for _, r := range "ab" {
		at = at.Add(15 * time.Millisecond)
		c.ObserveAt(Keystroke{Key: r}, at)
	}
	at = at.Add(25 * time.Millisecond)
	c.ObserveAt(Keystroke{Key: 'c'}, at)
	assert.Equal(t, "c", c.Buffer())

	c.Reset()
	assert.Empty(t, c.Buffer())
}

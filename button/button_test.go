package button

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// sampler feeds a debouncer one reading per millisecond offset.
type sampler struct {
	d    *Debouncer
	base time.Time
}

func (s sampler) at(ms int, pressed bool) bool {
	return s.d.Update(pressed, s.base.Add(time.Duration(ms)*time.Millisecond))
}

func newSampler() sampler {
	return sampler{d: NewDebouncer(DefaultDebounce, DefaultLockout), base: time.Unix(0, 0)}
}

func TestDebouncerFiresOncePerHold(t *testing.T) {
	s := newSampler()
	assert.False(t, s.at(0, false))
	assert.False(t, s.at(10, true))
	assert.False(t, s.at(60, true), "stable for exactly 50ms is not enough")
	assert.True(t, s.at(61, true))

	// Still held well past the lockout: no repeat.
	assert.False(t, s.at(500, true))
	assert.False(t, s.at(1000, true))
}

func TestDebouncerIgnoresBounce(t *testing.T) {
	s := newSampler()
	s.at(0, false)
	fired := false
	for ms := 1; ms < 40; ms++ {
		fired = s.at(ms, ms%2 == 0) || fired
	}
	assert.False(t, fired)

	s.at(40, true)
	assert.True(t, s.at(91, true))
}

func TestDebouncerLockout(t *testing.T) {
	s := newSampler()
	s.at(0, false)
	s.at(1, true)
	assert.True(t, s.at(52, true))

	// Quick release and press inside the lockout window.
	s.at(60, false)
	s.at(120, false)
	s.at(130, true)
	assert.False(t, s.at(200, true), "still locked out until 352ms")

	// Release and press again after the lockout.
	s.at(400, false)
	s.at(460, false)
	s.at(470, true)
	assert.True(t, s.at(521, true))
}

func TestDebouncerHeldAtStartupIsNotAPress(t *testing.T) {
	s := newSampler()
	assert.False(t, s.at(0, true))
	assert.False(t, s.at(100, true))
	assert.False(t, s.at(1000, true))

	s.at(1100, false)
	s.at(1200, false)
	s.at(1210, true)
	assert.True(t, s.at(1261, true))
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, DefaultDebounce, cfg.Debounce())
	assert.Equal(t, DefaultLockout, cfg.Lockout())
	assert.False(t, cfg.Enabled())

	cfg = Config{Type: "gpio", DebounceMs: 20, LockoutMs: 100}
	assert.Equal(t, 20*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 100*time.Millisecond, cfg.Lockout())
	assert.True(t, cfg.Enabled())
}

func TestNoopNeverPressed(t *testing.T) {
	n := &Noop{}
	pressed, err := n.Pressed()
	assert.NoError(t, err)
	assert.False(t, pressed)
}

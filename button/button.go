// Package button reads a physical push button and debounces it without
// blocking the caller.
package button

import (
	"errors"
	"time"
)

// ErrNotSupported is returned for input types this platform cannot open.
var ErrNotSupported = errors.New("button input not supported on this platform")

// Default timings for a tactile switch.
const (
	DefaultDebounce = 50 * time.Millisecond
	DefaultLockout  = 300 * time.Millisecond
)

// Input reports the instantaneous state of a button.
type Input interface {
	// Pressed returns true while the button is held down. It must not block.
	Pressed() (bool, error)

	// Release releases any hardware resources.
	Release() error
}

// Config holds configuration for a push button.
type Config struct {
	Type       string `yaml:"type"`        // "gpio", "evdev", "none"
	Chip       string `yaml:"chip"`        // gpio character device, default gpiochip0
	Pin        int    `yaml:"pin"`         // line offset (gpio)
	Device     string `yaml:"device"`      // input event device (evdev)
	KeyCode    int    `yaml:"key_code"`    // key code to watch (evdev)
	DebounceMs int    `yaml:"debounce_ms"` // reading must be stable this long
	LockoutMs  int    `yaml:"lockout_ms"`  // presses ignored this long after firing
	Action     string `yaml:"action"`      // "toggle" or an actuator name
}

// Debounce returns the configured debounce window or the default.
func (c Config) Debounce() time.Duration {
	if c.DebounceMs <= 0 {
		return DefaultDebounce
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Lockout returns the configured lockout window or the default.
func (c Config) Lockout() time.Duration {
	if c.LockoutMs <= 0 {
		return DefaultLockout
	}
	return time.Duration(c.LockoutMs) * time.Millisecond
}

// Enabled reports whether a button is configured at all.
func (c Config) Enabled() bool {
	return c.Type != "" && c.Type != "none"
}

// Debouncer turns raw button samples into press events. A press fires once
// the pressed reading has been stable for longer than the debounce window;
// it fires again only after a release and after the lockout has elapsed.
// Update never sleeps, so the polling loop keeps running during the lockout.
type Debouncer struct {
	debounce time.Duration
	lockout  time.Duration

	primed      bool
	last        bool
	changed     time.Time
	stable      bool
	lockedUntil time.Time
}

// NewDebouncer creates a debouncer with the given windows.
func NewDebouncer(debounce, lockout time.Duration) *Debouncer {
	return &Debouncer{debounce: debounce, lockout: lockout}
}

// Update feeds one sample taken at now and reports whether it completes a
// press.
func (d *Debouncer) Update(pressed bool, now time.Time) bool {
	if !d.primed {
		// A button held at startup is not a press.
		d.primed = true
		d.last = pressed
		d.stable = pressed
		d.changed = now
		return false
	}

	if pressed != d.last {
		d.last = pressed
		d.changed = now
		return false
	}
	if now.Sub(d.changed) <= d.debounce || pressed == d.stable {
		return false
	}

	d.stable = pressed
	if !pressed || now.Before(d.lockedUntil) {
		return false
	}
	d.lockedUntil = now.Add(d.lockout)
	return true
}

// Noop implements Input but is never pressed.
// Used when no button is configured.
type Noop struct{}

// Pressed implements Input.Pressed.
func (n *Noop) Pressed() (bool, error) {
	return false, nil
}

// Release implements Input.Release.
func (n *Noop) Release() error {
	return nil
}

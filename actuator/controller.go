package actuator

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrUnknownActuator is returned when a trigger names no configured actuator.
var ErrUnknownActuator = errors.New("unknown actuator")

// Actuator is one timed output. A pulse holds it open for a fixed duration,
// after which Tick returns it to rest.
type Actuator struct {
	Name    string
	pulse   time.Duration
	out     Output
	active  bool
	started time.Time
}

// State is a point-in-time view of an actuator.
type State struct {
	Name   string
	Active bool
}

// Controller drives a fixed set of actuators from a single polling loop.
// It holds no locks: Trigger, Tick and the accessors must all be called
// from the goroutine that owns the controller.
type Controller struct {
	actuators []*Actuator
	byName    map[string]*Actuator
	now       func() time.Time
	onPulse   func(name string, active bool)
}

// NewController creates an empty controller. now supplies the monotonic
// timestamp recorded when a pulse begins; nil means time.Now.
func NewController(now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		byName: make(map[string]*Actuator),
		now:    now,
	}
}

// Add registers an actuator. Names must be unique and pulse must be positive.
func (c *Controller) Add(name string, pulse time.Duration, out Output) error {
	if name == "" {
		return fmt.Errorf("actuator name is empty")
	}
	if _, dup := c.byName[name]; dup {
		return fmt.Errorf("duplicate actuator %q", name)
	}
	if pulse <= 0 {
		return fmt.Errorf("actuator %q: pulse must be positive, got %v", name, pulse)
	}
	if out == nil {
		out = &Noop{}
	}
	a := &Actuator{Name: name, pulse: pulse, out: out}
	c.actuators = append(c.actuators, a)
	c.byName[name] = a
	return nil
}

// OnPulse sets a callback invoked on every pulse edge.
func (c *Controller) OnPulse(fn func(name string, active bool)) {
	c.onPulse = fn
}

// Trigger starts a pulse on the named actuator. A trigger while a pulse is
// in flight is ignored: the deadline stays anchored to the first trigger.
// The returned bool reports whether a new pulse was started.
func (c *Controller) Trigger(name string) (bool, error) {
	a, ok := c.byName[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownActuator, name)
	}
	if a.active {
		return false, nil
	}
	if err := a.out.Start(); err != nil {
		log.Printf("Actuator %s start: %v", a.Name, err)
	}
	a.active = true
	a.started = c.now()
	if c.onPulse != nil {
		c.onPulse(a.Name, true)
	}
	return true, nil
}

// Tick closes every actuator whose pulse has run for strictly longer than
// its duration. It never blocks.
func (c *Controller) Tick(now time.Time) {
	for _, a := range c.actuators {
		if !a.active || now.Sub(a.started) <= a.pulse {
			continue
		}
		if err := a.out.End(); err != nil {
			log.Printf("Actuator %s end: %v", a.Name, err)
		}
		a.active = false
		if c.onPulse != nil {
			c.onPulse(a.Name, false)
		}
	}
}

// Active reports whether the named actuator has a pulse in flight.
func (c *Controller) Active(name string) bool {
	a, ok := c.byName[name]
	return ok && a.active
}

// Names returns actuator names in registration order.
func (c *Controller) Names() []string {
	names := make([]string, 0, len(c.actuators))
	for _, a := range c.actuators {
		names = append(names, a.Name)
	}
	return names
}

// Snapshot returns the state of every actuator in registration order.
func (c *Controller) Snapshot() []State {
	states := make([]State, 0, len(c.actuators))
	for _, a := range c.actuators {
		states = append(states, State{Name: a.Name, Active: a.active})
	}
	return states
}

// Release ends any pulse still in flight and releases every output.
func (c *Controller) Release() error {
	var lastErr error
	for _, a := range c.actuators {
		if a.active {
			if err := a.out.End(); err != nil {
				lastErr = err
			}
			a.active = false
		}
		if err := a.out.Release(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

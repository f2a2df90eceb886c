// Package station runs the cooperative control loop. One goroutine owns the
// actuator controller, the sensor flags, the button debouncer and the LED
// state; everything else reaches that state by submitting commands.
package station

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"petfeeder/actuator"
	"petfeeder/button"
	"petfeeder/indicator"
	"petfeeder/sensor"
)

// DefaultInterval is the loop cadence, well under the shortest pulse.
const DefaultInterval = 10 * time.Millisecond

// ActionToggle is the button action that flips the LED.
const ActionToggle = "toggle"

// ErrStopped is returned by Submit once the loop has exited.
var ErrStopped = errors.New("station stopped")

// Kind identifies a command.
type Kind int

const (
	KindTrigger Kind = iota // start a pulse on Target
	KindToggle              // flip the LED
	KindStatus              // report status only
)

func (k Kind) String() string {
	switch k {
	case KindTrigger:
		return "trigger"
	case KindToggle:
		return "toggle"
	case KindStatus:
		return "status"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Command asks the loop to do something.
type Command struct {
	Kind   Kind
	Target string
}

// Trigger returns a command that pulses the named actuator.
func Trigger(name string) Command { return Command{Kind: KindTrigger, Target: name} }

// Toggle returns a command that flips the LED.
func Toggle() Command { return Command{Kind: KindToggle} }

// Query returns a command that only reads status.
func Query() Command { return Command{Kind: KindStatus} }

// Result is the loop's answer to a command.
type Result struct {
	Started bool   // a new pulse began (KindTrigger)
	Status  Status // state after the command ran
}

type request struct {
	cmd   Command
	reply chan reply
}

type reply struct {
	res Result
	err error
}

// Station owns the loop state.
type Station struct {
	controller *actuator.Controller
	poller     *sensor.Poller
	input      button.Input
	debouncer  *button.Debouncer
	action     string
	led        indicator.Indicator
	ledOn      bool

	interval time.Duration
	now      func() time.Time
	requests chan request
	done     chan struct{}

	last     Status
	mail     *mailbox
	onStatus []func(Status)
	onPulse  []func(name string, active bool)
}

// Options configures a Station.
type Options struct {
	Controller *actuator.Controller
	Poller     *sensor.Poller
	Button     button.Input
	Debounce   time.Duration
	Lockout    time.Duration
	Action     string // "toggle" or an actuator name
	LED        indicator.Indicator
	Interval   time.Duration
	Now        func() time.Time
}

// New creates a station. Nil collaborators are replaced by no-ops.
func New(opts Options) *Station {
	if opts.Controller == nil {
		opts.Controller = actuator.NewController(opts.Now)
	}
	if opts.Poller == nil {
		opts.Poller = sensor.NewPoller()
	}
	if opts.Button == nil {
		opts.Button = &button.Noop{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = button.DefaultDebounce
	}
	if opts.Lockout <= 0 {
		opts.Lockout = button.DefaultLockout
	}
	if opts.LED == nil {
		opts.LED = &indicator.Noop{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Station{
		controller: opts.Controller,
		poller:     opts.Poller,
		input:      opts.Button,
		debouncer:  button.NewDebouncer(opts.Debounce, opts.Lockout),
		action:     opts.Action,
		led:        opts.LED,
		interval:   opts.Interval,
		now:        opts.Now,
		requests:   make(chan request),
		mail:       newMailbox(),
		done:       make(chan struct{}),
	}
	s.controller.OnPulse(s.pulse)
	return s
}

// OnStatus registers a callback for status changes. Callbacks run on a
// separate observer goroutine and may block without stalling the loop; a
// slow observer sees only the newest status. Register before Run.
func (s *Station) OnStatus(fn func(Status)) {
	s.onStatus = append(s.onStatus, fn)
}

// OnPulse registers a callback for pulse edges, run on the observer
// goroutine in edge order. Register before Run.
func (s *Station) OnPulse(fn func(name string, active bool)) {
	s.onPulse = append(s.onPulse, fn)
}

func (s *Station) pulse(name string, active bool) {
	s.mail.postEdge(name, active)
}

// Actuators returns actuator names in configuration order.
func (s *Station) Actuators() []string {
	return s.controller.Names()
}

// Run executes the loop until ctx is cancelled. Each pass services at most
// one pending command, polls the sensors, samples the button and ticks the
// actuators. Nothing on that path sleeps.
func (s *Station) Run(ctx context.Context) error {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	go s.notify(ctx.Done())

	s.led.Set(s.ledOn)
	s.step()
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-s.requests:
			res, err := s.handle(req.cmd)
			req.reply <- reply{res: res, err: err}
		case <-ticker.C:
		}
		s.step()
	}
}

// Submit hands cmd to the loop and waits for its result.
func (s *Station) Submit(ctx context.Context, cmd Command) (Result, error) {
	req := request{cmd: cmd, reply: make(chan reply, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r.res, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (s *Station) handle(cmd Command) (Result, error) {
	var res Result
	switch cmd.Kind {
	case KindTrigger:
		started, err := s.controller.Trigger(cmd.Target)
		if err != nil {
			return res, err
		}
		res.Started = started
	case KindToggle:
		s.toggle()
	case KindStatus:
	default:
		return res, fmt.Errorf("unknown command %v", cmd.Kind)
	}
	res.Status = s.snapshot()
	return res, nil
}

func (s *Station) step() {
	now := s.now()
	s.poller.PollAll()

	pressed, err := s.input.Pressed()
	if err != nil {
		pressed = false
	}
	if s.debouncer.Update(pressed, now) {
		s.press()
	}

	s.controller.Tick(now)

	st := s.snapshot()
	if !st.Equal(s.last) {
		s.last = st
		s.mail.postStatus(st)
	}
}

func (s *Station) press() {
	if s.action == "" || s.action == ActionToggle {
		s.toggle()
		return
	}
	if _, err := s.controller.Trigger(s.action); err != nil {
		log.Printf("Button action: %v", err)
	}
}

func (s *Station) toggle() {
	s.ledOn = !s.ledOn
	s.led.Set(s.ledOn)
}

func (s *Station) snapshot() Status {
	return Status{
		Sensors:   s.poller.Flags(),
		LED:       s.ledOn,
		Actuators: s.controller.Snapshot(),
	}
}

package actuator

import (
	"fmt"
	"strings"
	"time"

	"github.com/hjkoskel/govattu"
)

// Output is the hardware side of a pulse.
type Output interface {
	// Start moves the actuator to its open/energized state.
	Start() error

	// End returns the actuator to rest.
	End() error

	// Release releases any hardware resources.
	Release() error
}

// Level is the output level that energizes an actuator.
type Level int

const (
	High Level = iota
	Low
)

// ParseLevel converts "high"/"low" (case-insensitive). Empty means High.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "high":
		return High, nil
	case "low":
		return Low, nil
	default:
		return High, fmt.Errorf("invalid active level %q", s)
	}
}

func (l Level) String() string {
	if l == Low {
		return "low"
	}
	return "high"
}

// Config holds configuration for one actuator.
type Config struct {
	Name        string `yaml:"name"`
	Label       string `yaml:"label"`        // button text on the control page
	Type        string `yaml:"type"`         // "servo", "gpio", "none"
	Pin         *int   `yaml:"pin"`          // BCM pin number
	ActiveLevel string `yaml:"active_level"` // "high" or "low" (gpio only)
	PulseMs     int    `yaml:"pulse_ms"`
	OpenAngle   int    `yaml:"open_angle"`  // servo angle while pulsing
	RestAngle   int    `yaml:"rest_angle"`  // servo angle at rest
	ServoOpen   int    `yaml:"servo_open"`  // raw PWM value, overrides open_angle
	ServoClose  int    `yaml:"servo_close"` // raw PWM value, overrides rest_angle
	Route       string `yaml:"route"`       // HTTP path that triggers the pulse
	Ack         string `yaml:"ack"`         // plain-text reply on that route
}

// Pulse returns the configured pulse duration.
func (c Config) Pulse() time.Duration {
	return time.Duration(c.PulseMs) * time.Millisecond
}

// NewOutput creates an Output based on the provided configuration.
func NewOutput(cfg Config) (Output, error) {
	if cfg.Pin == nil || cfg.Type == "none" {
		return &Noop{}, nil
	}

	level, err := ParseLevel(cfg.ActiveLevel)
	if err != nil {
		return nil, fmt.Errorf("actuator %s: %w", cfg.Name, err)
	}

	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	pin := uint8(*cfg.Pin)

	switch cfg.Type {
	case "servo":
		ch, err := pwmChannel(pin)
		if err != nil {
			hw.Close()
			return nil, fmt.Errorf("actuator %s: %w", cfg.Name, err)
		}
		hw.PinMode(pin, govattu.ALT5) // ALT5 is PWM0 on 18, PWM1 on 19
		hw.PwmSetMode(true, true, true, true)
		hw.PwmSetClock(19)
		hw.Pwm0SetRange(servoRange)
		hw.Pwm1SetRange(servoRange)

		open, rest := cfg.ServoOpen, cfg.ServoClose
		if open == 0 {
			open = AngleToPWM(cfg.OpenAngle)
		}
		if rest == 0 {
			rest = AngleToPWM(cfg.RestAngle)
		}
		return NewServo(hw, ch, open, rest)
	case "gpio", "":
		hw.PinMode(pin, govattu.ALToutput)
		return NewGPIO(hw, pin, level)
	default:
		hw.Close()
		return nil, fmt.Errorf("actuator %s: unknown type %q", cfg.Name, cfg.Type)
	}
}

// pwmChannel maps a BCM pin to its hardware PWM channel.
func pwmChannel(pin uint8) (int, error) {
	switch pin {
	case 18:
		return 0, nil
	case 19:
		return 1, nil
	default:
		return 0, fmt.Errorf("pin %d has no ALT5 hardware PWM (use 18 or 19)", pin)
	}
}

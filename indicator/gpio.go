package indicator

import (
	"fmt"

	"github.com/hjkoskel/govattu"
)

// pinWriter is the part of the GPIO register block the LED needs.
type pinWriter interface {
	PinSet(pin uint8)
	PinClear(pin uint8)
	Close() error
}

// GPIO implements Indicator using a discrete LED on one GPIO pin.
type GPIO struct {
	hw        pinWriter
	pin       uint8
	activeLow bool
}

// NewGPIO opens the GPIO block and configures pin as an output, off.
func NewGPIO(pin uint8, activeLow bool) (*GPIO, error) {
	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	hw.PinMode(pin, govattu.ALToutput)
	return newGPIO(hw, pin, activeLow), nil
}

func newGPIO(hw pinWriter, pin uint8, activeLow bool) *GPIO {
	g := &GPIO{
		hw:        hw,
		pin:       pin,
		activeLow: activeLow,
	}
	g.Set(false)
	return g
}

// Set implements Indicator.Set.
func (g *GPIO) Set(on bool) {
	if on != g.activeLow {
		g.hw.PinSet(g.pin)
	} else {
		g.hw.PinClear(g.pin)
	}
}

// Release implements Indicator.Release.
func (g *GPIO) Release() error {
	g.Set(false)
	return g.hw.Close()
}

//go:build linux

package sensor

import (
	"fmt"
	"sync"

	"github.com/warthog618/gpio"
)

var (
	gpioMu   sync.Mutex
	gpioRefs int
)

func acquireGPIO() error {
	gpioMu.Lock()
	defer gpioMu.Unlock()
	if gpioRefs == 0 {
		if err := gpio.Open(); err != nil {
			return fmt.Errorf("open gpio: %w", err)
		}
	}
	gpioRefs++
	return nil
}

func releaseGPIO() error {
	gpioMu.Lock()
	defer gpioMu.Unlock()
	if gpioRefs == 0 {
		return nil
	}
	gpioRefs--
	if gpioRefs == 0 {
		return gpio.Close()
	}
	return nil
}

// Digital reads a single GPIO input pin (BCM numbering) through the
// memory-mapped GPIO block. Reads are register loads and never block.
type Digital struct {
	pin    *gpio.Pin
	closed bool
}

// NewDigital configures pin as an input.
func NewDigital(pin int, pullUp bool) (*Digital, error) {
	if err := acquireGPIO(); err != nil {
		return nil, err
	}
	p := gpio.NewPin(pin)
	p.Input()
	if pullUp {
		p.PullUp()
	}
	return &Digital{pin: p}, nil
}

// Read implements Source.Read.
func (d *Digital) Read() (int, error) {
	if d.pin.Read() == gpio.High {
		return 1, nil
	}
	return 0, nil
}

// Close implements Source.Close.
func (d *Digital) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return releaseGPIO()
}

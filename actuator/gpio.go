package actuator

// pinWriter is the part of the GPIO register block a GPIO output drives.
type pinWriter interface {
	PinSet(pin uint8)
	PinClear(pin uint8)
	Close() error
}

// GPIO implements Output by driving a single digital pin.
type GPIO struct {
	hw    pinWriter
	pin   uint8
	level Level // level that energizes the actuator
}

// NewGPIO creates a GPIO output. The pin is driven to rest immediately.
func NewGPIO(hw pinWriter, pin uint8, level Level) (*GPIO, error) {
	g := &GPIO{
		hw:    hw,
		pin:   pin,
		level: level,
	}
	g.End()
	return g, nil
}

// Start implements Output.Start.
func (g *GPIO) Start() error {
	g.write(g.level == High)
	return nil
}

// End implements Output.End.
func (g *GPIO) End() error {
	g.write(g.level == Low)
	return nil
}

// Release implements Output.Release.
func (g *GPIO) Release() error {
	return g.hw.Close()
}

func (g *GPIO) write(high bool) {
	if high {
		g.hw.PinSet(g.pin)
	} else {
		g.hw.PinClear(g.pin)
	}
}

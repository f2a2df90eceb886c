// Package indicator drives the status LED toggled from the control page
// and the push button.
package indicator

// Indicator is the interface for LED implementations (GPIO pin, neopixels).
type Indicator interface {
	// Set turns the indicator on or off.
	Set(on bool)

	// Release turns the indicator off and releases hardware resources.
	Release() error
}

// Config holds configuration for indicator implementations.
type Config struct {
	// GPIO LED pin (nil = not configured)
	Pin *uint8 `yaml:"pin"`

	// Drive the pin low to light the LED.
	ActiveLow bool `yaml:"active_low"`

	// Neopixel pipe path (empty = not configured)
	NeopixelPipe string `yaml:"neopixel_pipe"`

	// Neopixel command strings; defaults used when empty.
	NeopixelOn  string `yaml:"neopixel_on"`
	NeopixelOff string `yaml:"neopixel_off"`
}

// Enabled reports whether any LED output is configured.
func (c Config) Enabled() bool {
	return c.Pin != nil || c.NeopixelPipe != ""
}

// New creates an Indicator based on the provided configuration.
// Returns a Multi indicator if both GPIO and Neopixel are configured.
func New(cfg Config) (Indicator, error) {
	var indicators []Indicator

	if cfg.Pin != nil {
		gpio, err := NewGPIO(*cfg.Pin, cfg.ActiveLow)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, gpio)
	}

	if cfg.NeopixelPipe != "" {
		neo, err := NewNeopixel(cfg.NeopixelPipe, cfg.NeopixelOn, cfg.NeopixelOff)
		if err != nil {
			for _, ind := range indicators {
				ind.Release()
			}
			return nil, err
		}
		indicators = append(indicators, neo)
	}

	if len(indicators) == 0 {
		return &Noop{}, nil
	}
	if len(indicators) == 1 {
		return indicators[0], nil
	}
	return NewMulti(indicators...), nil
}

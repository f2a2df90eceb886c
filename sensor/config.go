package sensor

import (
	"fmt"
)

// Config holds configuration for one sensor flag.
type Config struct {
	Key       string `yaml:"key"`       // JSON key in the status body
	Label     string `yaml:"label"`     // text on the control page
	Type      string `yaml:"type"`      // "digital", "serial", "iio", "static"
	Pin       int    `yaml:"pin"`       // BCM pin (digital)
	PullUp    bool   `yaml:"pull_up"`   // enable pull-up (digital)
	Device    string `yaml:"device"`    // serial port or IIO raw file
	Baud      int    `yaml:"baud"`      // serial baud rate
	Channel   string `yaml:"channel"`   // channel name on a serial ADC bridge
	Predicate string `yaml:"predicate"` // "low", "high", "above", "below"
	Threshold int    `yaml:"threshold"`
	Value     int    `yaml:"value"` // fixed reading (static)
}

// NewSource creates a Source based on the provided configuration.
func NewSource(cfg Config) (Source, error) {
	switch cfg.Type {
	case "digital":
		d, err := NewDigital(cfg.Pin, cfg.PullUp)
		if err != nil {
			return nil, fmt.Errorf("sensor %s: %w", cfg.Key, err)
		}
		return d, nil
	case "serial":
		s, err := NewSerial(cfg.Device, cfg.Baud, cfg.Channel)
		if err != nil {
			return nil, fmt.Errorf("sensor %s: %w", cfg.Key, err)
		}
		return s, nil
	case "iio":
		return NewIIO(cfg.Device), nil
	case "static", "":
		return NewStatic(cfg.Value), nil
	default:
		return nil, fmt.Errorf("sensor %s: unknown type %q", cfg.Key, cfg.Type)
	}
}

// New builds a poller from a list of sensor configs. Sources opened before
// a failure are closed.
func New(cfgs []Config) (*Poller, error) {
	p := NewPoller()
	for _, cfg := range cfgs {
		pred, err := ParsePredicate(cfg.Predicate)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("sensor %s: %w", cfg.Key, err)
		}
		src, err := NewSource(cfg)
		if err != nil {
			p.Close()
			return nil, err
		}
		if err := p.Add(cfg.Key, cfg.Label, src, pred, cfg.Threshold); err != nil {
			src.Close()
			p.Close()
			return nil, err
		}
	}
	return p, nil
}

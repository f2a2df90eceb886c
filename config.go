package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"petfeeder/actuator"
	"petfeeder/button"
	"petfeeder/eventpipe"
	"petfeeder/indicator"
	"petfeeder/mqtt"
	"petfeeder/sensor"
	"petfeeder/station"
	"petfeeder/video"
	"petfeeder/web"
)

// reservedRoutes are served by the web package itself.
var reservedRoutes = map[string]bool{
	"/":          true,
	"/getStatus": true,
	"/toggle":    true,
	"/getState":  true,
	"/metrics":   true,
}

// Config is the main configuration structure for petfeeder.
type Config struct {
	// HTTP control panel
	HTTP web.Config `yaml:"http"`

	// Timed outputs (servos, pump), in page order
	Actuators []actuator.Config `yaml:"actuators"`

	// Presence flags, in /getStatus order
	Sensors []sensor.Config `yaml:"sensors"`

	// Push button
	Button button.Config `yaml:"button"`

	// LED; /toggle and /getState are served only when set
	LED indicator.Config `yaml:"led"`

	// MQTT connection settings
	MQTT mqtt.Config `yaml:"mqtt"`

	// Bench command pipe
	EventPipe eventpipe.Config `yaml:"event_pipe"`

	// Framebuffer status screen
	Video video.Config `yaml:"video"`

	// General settings
	ClientID       string `yaml:"client_id"`
	LoopIntervalMs int    `yaml:"loop_interval_ms"`
	Metrics        bool   `yaml:"metrics"`
}

// LoadConfig reads, defaults and validates the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.SetStrict(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ClientID == "" {
		c.ClientID = "petfeeder"
	}
	if c.Video.Title == "" {
		c.Video.Title = c.HTTP.Title
	}
	for i := range c.Actuators {
		a := &c.Actuators[i]
		if a.Label == "" {
			a.Label = a.Name
		}
		if a.Route != "" && a.Ack == "" {
			a.Ack = "OK"
		}
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	names := make(map[string]bool)
	routes := make(map[string]bool)
	for i, a := range c.Actuators {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("actuators[%d]: name missing", i))
			continue
		}
		if names[a.Name] {
			errs = append(errs, fmt.Errorf("actuator %s: duplicate name", a.Name))
		}
		names[a.Name] = true

		if a.PulseMs <= 0 {
			errs = append(errs, fmt.Errorf("actuator %s: pulse_ms must be positive", a.Name))
		}
		if _, err := actuator.ParseLevel(a.ActiveLevel); err != nil {
			errs = append(errs, fmt.Errorf("actuator %s: %w", a.Name, err))
		}
		if a.Route == "" {
			continue
		}
		switch {
		case !strings.HasPrefix(a.Route, "/"):
			errs = append(errs, fmt.Errorf("actuator %s: route %q must start with /", a.Name, a.Route))
		case reservedRoutes[a.Route]:
			errs = append(errs, fmt.Errorf("actuator %s: route %q is reserved", a.Name, a.Route))
		case routes[a.Route]:
			errs = append(errs, fmt.Errorf("actuator %s: duplicate route %q", a.Name, a.Route))
		}
		routes[a.Route] = true
	}

	keys := make(map[string]bool)
	for i, s := range c.Sensors {
		if s.Key == "" {
			errs = append(errs, fmt.Errorf("sensors[%d]: key missing", i))
			continue
		}
		if keys[s.Key] {
			errs = append(errs, fmt.Errorf("sensor %s: duplicate key", s.Key))
		}
		keys[s.Key] = true
	}

	if act := c.Button.Action; c.Button.Enabled() && act != "" && act != station.ActionToggle && !names[act] {
		errs = append(errs, fmt.Errorf("button action %q: no such actuator", act))
	}

	if c.LoopIntervalMs < 0 {
		errs = append(errs, errors.New("loop_interval_ms must not be negative"))
	}

	return errors.Join(errs...)
}

// LoopInterval returns the station cadence, zero meaning the default.
func (c *Config) LoopInterval() time.Duration {
	return time.Duration(c.LoopIntervalMs) * time.Millisecond
}

// Routes returns the HTTP trigger routes in actuator order.
func (c *Config) Routes() []web.Route {
	var routes []web.Route
	for _, a := range c.Actuators {
		if a.Route == "" {
			continue
		}
		routes = append(routes, web.Route{
			Path:     a.Route,
			Actuator: a.Name,
			Label:    a.Label,
			Ack:      a.Ack,
		})
	}
	return routes
}

// Package sensor turns raw digital and analog readings into presence flags.
package sensor

import (
	"fmt"
	"log"
	"strings"
)

// Source yields one raw reading per call. Digital sources return 0 or 1;
// analog sources return the ADC count. Read must not block.
type Source interface {
	Read() (int, error)
	Close() error
}

// Predicate decides whether a raw reading means "present".
type Predicate int

const (
	PredLow   Predicate = iota // digital reading is 0
	PredHigh                   // digital reading is 1
	PredAbove                  // raw > threshold
	PredBelow                  // raw < threshold
)

// ParsePredicate converts a config string into a Predicate.
func ParsePredicate(s string) (Predicate, error) {
	switch strings.ToLower(s) {
	case "low":
		return PredLow, nil
	case "high":
		return PredHigh, nil
	case "above":
		return PredAbove, nil
	case "below":
		return PredBelow, nil
	default:
		return PredLow, fmt.Errorf("invalid predicate %q", s)
	}
}

// Apply evaluates the predicate against a raw reading.
func (p Predicate) Apply(raw, threshold int) bool {
	switch p {
	case PredLow:
		return raw == 0
	case PredHigh:
		return raw != 0
	case PredAbove:
		return raw > threshold
	case PredBelow:
		return raw < threshold
	}
	return false
}

// Flag is one sensor's presence flag. It has no history: every poll
// overwrites it.
type Flag struct {
	Key       string
	Label     string
	source    Source
	predicate Predicate
	threshold int
	present   bool
}

// Reading is the value of one flag after a poll.
type Reading struct {
	Key     string
	Label   string
	Present bool
}

// Poller owns an ordered set of flags.
type Poller struct {
	flags []*Flag
}

// NewPoller creates an empty poller.
func NewPoller() *Poller {
	return &Poller{}
}

// Add appends a flag. Keys must be unique.
func (p *Poller) Add(key, label string, src Source, pred Predicate, threshold int) error {
	for _, f := range p.flags {
		if f.Key == key {
			return fmt.Errorf("duplicate sensor %q", key)
		}
	}
	if label == "" {
		label = key
	}
	p.flags = append(p.flags, &Flag{
		Key:       key,
		Label:     label,
		source:    src,
		predicate: pred,
		threshold: threshold,
	})
	return nil
}

// PollAll reads every source and overwrites its flag. A failed read clears
// the flag for this cycle.
func (p *Poller) PollAll() {
	for _, f := range p.flags {
		raw, err := f.source.Read()
		if err != nil {
			if f.present {
				log.Printf("Sensor %s read: %v", f.Key, err)
			}
			f.present = false
			continue
		}
		f.present = f.predicate.Apply(raw, f.threshold)
	}
}

// Flags returns the current readings in configuration order.
func (p *Poller) Flags() []Reading {
	out := make([]Reading, 0, len(p.flags))
	for _, f := range p.flags {
		out = append(out, Reading{Key: f.Key, Label: f.Label, Present: f.present})
	}
	return out
}

// Present returns the flag for key.
func (p *Poller) Present(key string) (bool, bool) {
	for _, f := range p.flags {
		if f.Key == key {
			return f.present, true
		}
	}
	return false, false
}

// Close closes every source.
func (p *Poller) Close() error {
	var lastErr error
	for _, f := range p.flags {
		if err := f.source.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

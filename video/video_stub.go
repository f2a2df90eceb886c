//go:build !screen

package video

import "petfeeder/station"

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return false
}

// Display is a stub when screen support is not compiled in.
type Display struct{}

// New returns an error when screen support is not compiled in.
func New(cfg Config, showLED bool) (*Display, error) {
	return nil, ErrScreenNotCompiled
}

func (v *Display) Show(st station.Status) {}
func (v *Display) Run(done <-chan struct{}) {}
func (v *Display) Release() error { return nil }

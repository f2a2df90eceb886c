//go:build !linux

package button

// New returns ErrNotSupported for hardware inputs on non-linux platforms.
func New(cfg Config) (Input, error) {
	if !cfg.Enabled() {
		return &Noop{}, nil
	}
	return nil, ErrNotSupported
}

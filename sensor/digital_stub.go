//go:build !linux

package sensor

// Digital is a stub on platforms without the BCM GPIO block.
type Digital struct{}

// NewDigital returns ErrNotSupported on non-linux platforms.
func NewDigital(pin int, pullUp bool) (*Digital, error) {
	return nil, ErrNotSupported
}

// Read implements Source.Read.
func (d *Digital) Read() (int, error) {
	return 0, ErrNotSupported
}

// Close implements Source.Close.
func (d *Digital) Close() error {
	return nil
}

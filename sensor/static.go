package sensor

import "sync/atomic"

// Static is a Source with a settable value. It stands in for hardware on
// bench builds and in tests.
type Static struct {
	v atomic.Int64
}

// NewStatic creates a Static source holding value.
func NewStatic(value int) *Static {
	s := &Static{}
	s.Set(value)
	return s
}

// Set changes the value returned by Read.
func (s *Static) Set(value int) {
	s.v.Store(int64(value))
}

// Read implements Source.Read.
func (s *Static) Read() (int, error) {
	return int(s.v.Load()), nil
}

// Close implements Source.Close.
func (s *Static) Close() error {
	return nil
}

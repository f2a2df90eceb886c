package indicator

// Noop implements Indicator but does nothing.
// Used when no LED is configured.
type Noop struct{}

// Set implements Indicator.Set.
func (n *Noop) Set(on bool) {}

// Release implements Indicator.Release.
func (n *Noop) Release() error {
	return nil
}

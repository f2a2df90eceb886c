package actuator

// Noop implements Output but does nothing.
// Used when an actuator has no pin configured.
type Noop struct{}

// Start implements Output.Start.
func (n *Noop) Start() error {
	return nil
}

// End implements Output.End.
func (n *Noop) End() error {
	return nil
}

// Release implements Output.Release.
func (n *Noop) Release() error {
	return nil
}

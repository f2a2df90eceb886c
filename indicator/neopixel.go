package indicator

import (
	"fmt"
	"io"
	"os"
)

// Neopixel command strings for the external neopixel tool.
const (
	neoOn         = "@0 ffffff"
	neoOff        = "@0 000000"
	neoTerminated = "@0 010101"
)

// Neopixel implements Indicator using an external neopixel tool via named pipe.
type Neopixel struct {
	pipe io.WriteCloser
	on   string
	off  string
}

// NewNeopixel opens the neopixel pipe. Empty command strings fall back to
// plain white / off.
func NewNeopixel(pipePath, on, off string) (*Neopixel, error) {
	f, err := os.OpenFile(pipePath, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open neopixel pipe %s: %w", pipePath, err)
	}
	return newNeopixel(f, on, off), nil
}

func newNeopixel(w io.WriteCloser, on, off string) *Neopixel {
	if on == "" {
		on = neoOn
	}
	if off == "" {
		off = neoOff
	}
	return &Neopixel{pipe: w, on: on, off: off}
}

// Set implements Indicator.Set.
func (n *Neopixel) Set(on bool) {
	if on {
		n.write(n.on)
	} else {
		n.write(n.off)
	}
}

// Release implements Indicator.Release.
func (n *Neopixel) Release() error {
	if n.pipe == nil {
		return nil
	}
	n.write(neoTerminated)
	return n.pipe.Close()
}

func (n *Neopixel) write(s string) {
	if n.pipe != nil {
		n.pipe.Write([]byte(s))
	}
}

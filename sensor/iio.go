package sensor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IIO reads a raw ADC channel exposed by the Linux industrial I/O
// subsystem, e.g. /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
type IIO struct {
	path string
}

// NewIIO creates an IIO source for the given sysfs file.
func NewIIO(path string) *IIO {
	return &IIO{path: path}
}

// Read implements Source.Read.
func (i *IIO) Read() (int, error) {
	b, err := os.ReadFile(i.path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", i.path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", i.path, err)
	}
	return v, nil
}

// Close implements Source.Close.
func (i *IIO) Close() error {
	return nil
}

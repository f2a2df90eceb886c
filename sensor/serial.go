package sensor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tarm/serial"
)

var (
	// ErrNoReading is returned before a source has produced its first value.
	ErrNoReading = errors.New("no reading yet")

	// ErrNotSupported is returned for sources this platform cannot drive.
	ErrNotSupported = errors.New("sensor type not supported on this platform")
)

// Serial reads analog values from an ADC bridge on a serial port. The
// bridge emits one line per sample, either "<value>" or "<channel>:<value>".
// A background goroutine keeps the latest value for the configured channel;
// Read returns it without touching the port.
type Serial struct {
	port    *serial.Port
	device  string
	channel string
	latest  atomic.Int64
	seen    atomic.Bool
	done    chan struct{}
}

// NewSerial opens device and starts reading samples.
func NewSerial(device string, baud int, channel string) (*Serial, error) {
	if baud == 0 {
		baud = 115200
	}
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: time.Second,
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}

	s := &Serial{
		port:    port,
		device:  device,
		channel: channel,
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *Serial) readLoop() {
	defer close(s.done)
	scanner := bufio.NewScanner(s.port)
	for {
		for scanner.Scan() {
			if v, ok := parseSample(scanner.Text(), s.channel); ok {
				s.latest.Store(int64(v))
				s.seen.Store(true)
			}
		}
		if err := scanner.Err(); err != nil && !errors.Is(err, io.ErrNoProgress) {
			log.Printf("Serial %s: %v", s.device, err)
			return
		}
		// Read timeouts surface as EOF or no-progress; keep scanning.
		scanner = bufio.NewScanner(s.port)
	}
}

// parseSample extracts the value for channel from one bridge line.
func parseSample(line, channel string) (int, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return 0, false
	}
	name, value, hasName := strings.Cut(line, ":")
	if !hasName {
		value = name
		name = ""
	}
	if channel != "" && strings.TrimSpace(name) != channel {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Read implements Source.Read.
func (s *Serial) Read() (int, error) {
	if !s.seen.Load() {
		return 0, ErrNoReading
	}
	return int(s.latest.Load()), nil
}

// Close implements Source.Close.
func (s *Serial) Close() error {
	return s.port.Close()
}

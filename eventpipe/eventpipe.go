// Package eventpipe reads bench commands from a named pipe so a shell can
// drive the station without HTTP: echo "trigger comida" > /tmp/petfeeder-events
package eventpipe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"syscall"

	"petfeeder/station"
)

// Config holds configuration for the event pipe.
type Config struct {
	Path string `yaml:"path"` // Path to named pipe (e.g., "/tmp/petfeeder-events")
}

// Handler is called for every parsed command, in pipe order.
type Handler func(station.Command)

// EventPipe listens for commands on a named pipe.
type EventPipe struct {
	path    string
	handler Handler
}

// New creates the pipe. Returns nil if path is empty.
func New(cfg Config, handler Handler) (*EventPipe, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	// A stale pipe or file from a previous run is replaced
	os.Remove(cfg.Path)
	if err := syscall.Mkfifo(cfg.Path, 0666); err != nil {
		return nil, fmt.Errorf("create named pipe %s: %w", cfg.Path, err)
	}

	return &EventPipe{path: cfg.Path, handler: handler}, nil
}

// Run serves the pipe until ctx is cancelled. The pipe is opened read-write
// so the open never waits for a writer and writers coming and going do not
// end the stream.
func (ep *EventPipe) Run(ctx context.Context) error {
	file, err := os.OpenFile(ep.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open named pipe: %w", err)
	}
	go func() {
		<-ctx.Done()
		file.Close()
	}()

	log.Printf("Event pipe listening on %s", ep.path)
	err = ep.Serve(file)
	if ctx.Err() != nil || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// Serve dispatches every command line read from r until EOF.
func (ep *EventPipe) Serve(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cmd, err := parseLine(line)
		if err != nil {
			log.Printf("Event pipe parse error: %v", err)
			continue
		}
		if ep.handler != nil {
			ep.handler(cmd)
		}
	}
	return scanner.Err()
}

// Close removes the pipe.
func (ep *EventPipe) Close() error {
	return os.Remove(ep.path)
}

// parseLine parses a command line into a station command.
// Command format:
//
//	trigger <name>   - Start a pulse on the named actuator
//	pulse <name>     - Alias for trigger
//	toggle           - Flip the LED
//	status           - Log the current status
func parseLine(line string) (station.Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return station.Command{}, fmt.Errorf("empty command")
	}

	switch verb := strings.ToLower(parts[0]); verb {
	case "trigger", "pulse":
		if len(parts) != 2 {
			return station.Command{}, fmt.Errorf("%s requires one actuator name", verb)
		}
		return station.Trigger(parts[1]), nil
	case "toggle":
		return station.Toggle(), nil
	case "status":
		return station.Query(), nil
	default:
		return station.Command{}, fmt.Errorf("unknown command: %s", verb)
	}
}

//go:build linux

package button

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/kenshaw/evdev"
	"github.com/warthog618/go-gpiocdev"
)

// New creates an Input based on the provided configuration.
func New(cfg Config) (Input, error) {
	switch cfg.Type {
	case "gpio":
		chip := cfg.Chip
		if chip == "" {
			chip = "gpiochip0"
		}
		return NewLine(chip, cfg.Pin)
	case "evdev":
		return NewKey(cfg.Device, cfg.KeyCode)
	case "", "none":
		return &Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown button type %q", cfg.Type)
	}
}

// Line is a button wired between a GPIO line and ground, with the internal
// pull-up enabled: the line reads low while pressed.
type Line struct {
	line *gpiocdev.Line
}

// NewLine requests offset on chip as a pulled-up input.
func NewLine(chip string, offset int) (*Line, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("request line %s:%d: %w", chip, offset, err)
	}
	return &Line{line: l}, nil
}

// Pressed implements Input.Pressed.
func (l *Line) Pressed() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, err
	}
	return v == 0, nil
}

// Release implements Input.Release.
func (l *Line) Release() error {
	return l.line.Close()
}

// Key is a button on a USB HID device (a foot switch or a spare keyboard
// key). A goroutine follows key events; Pressed reports the last state.
type Key struct {
	device *evdev.Evdev
	code   int
	down   atomic.Bool
	cancel context.CancelFunc
}

// NewKey opens device and watches code.
func NewKey(device string, code int) (*Key, error) {
	dev, err := evdev.OpenFile(device)
	if err != nil {
		return nil, fmt.Errorf("open evdev %s: %w", device, err)
	}
	log.Printf("Opened button device: %s", dev.Name())

	ctx, cancel := context.WithCancel(context.Background())
	k := &Key{device: dev, code: code, cancel: cancel}
	go k.watch(ctx)
	return k, nil
}

func (k *Key) watch(ctx context.Context) {
	ch := k.device.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			if event == nil {
				log.Printf("Button device closed")
				return
			}
			if _, ok := event.Type.(evdev.KeyType); !ok || int(event.Code) != k.code {
				continue
			}
			// 1 = down, 2 = autorepeat, 0 = up
			k.down.Store(event.Value != 0)
		}
	}
}

// Pressed implements Input.Pressed.
func (k *Key) Pressed() (bool, error) {
	return k.down.Load(), nil
}

// Release implements Input.Release.
func (k *Key) Release() error {
	k.cancel()
	return k.device.Close()
}

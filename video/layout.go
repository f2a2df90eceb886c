package video

import (
	"errors"
	"sync"

	"petfeeder/station"
)

// ErrScreenNotCompiled is returned by New in builds without the screen tag.
var ErrScreenNotCompiled = errors.New("screen support not compiled in (build with -tags=screen)")

// Config holds video display configuration.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Device  string `yaml:"device"` // Framebuffer device, default /dev/fb0
	Title   string `yaml:"title"`
}

// Row is one line of the status screen.
type Row struct {
	Text string
	On   bool
}

// Layout turns a status snapshot into the rows drawn below the title:
// one per sensor, one per actuator, then the LED.
func Layout(st station.Status, showLED bool) []Row {
	rows := make([]Row, 0, len(st.Sensors)+len(st.Actuators)+1)
	for _, r := range st.Sensors {
		text := r.Label + ": "
		if r.Present {
			text += "OK"
		} else {
			text += "VACIO"
		}
		rows = append(rows, Row{Text: text, On: r.Present})
	}
	for _, a := range st.Actuators {
		if a.Active {
			rows = append(rows, Row{Text: a.Name + ": activo", On: true})
		}
	}
	if showLED {
		text := "LED: OFF"
		if st.LED {
			text = "LED: ON"
		}
		rows = append(rows, Row{Text: text, On: st.LED})
	}
	return rows
}

// latest keeps only the most recent snapshot for a slow consumer and
// tracks the goroutine serving it.
type latest struct {
	ch chan station.Status

	mu      sync.Mutex
	running bool
	stopped bool
	exited  chan struct{}
}

func newLatest() *latest {
	return &latest{
		ch:     make(chan station.Status, 1),
		exited: make(chan struct{}),
	}
}

// put replaces any undelivered snapshot with st. Never blocks as long as
// it is called from a single goroutine.
func (l *latest) put(st station.Status) {
	select {
	case <-l.ch:
	default:
	}
	l.ch <- st
}

// serve calls draw for each snapshot until done is closed. It returns at
// once if stop already ran.
func (l *latest) serve(done <-chan struct{}, draw func(station.Status)) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()
	defer close(l.exited)

	for {
		select {
		case <-done:
			return
		case st := <-l.ch:
			draw(st)
		}
	}
}

// stop waits for serve to finish its current draw and return. The done
// channel given to serve must already be closed.
func (l *latest) stop() {
	l.mu.Lock()
	l.stopped = true
	running := l.running
	l.mu.Unlock()
	if running {
		<-l.exited
	}
}

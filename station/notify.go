package station

import (
	"log"
	"sync"
)

// maxPendingEdges bounds the pulse edges queued for slow observers.
const maxPendingEdges = 64

type edge struct {
	name   string
	active bool
}

// mailbox hands loop events to the observer goroutine without ever
// blocking the loop. Statuses coalesce to the newest; pulse edges queue up
// to maxPendingEdges and are dropped beyond that.
type mailbox struct {
	mu      sync.Mutex
	status  *Status
	edges   []edge
	dropped int
	wake    chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

func (m *mailbox) postStatus(st Status) {
	m.mu.Lock()
	m.status = &st
	m.mu.Unlock()
	m.signal()
}

func (m *mailbox) postEdge(name string, active bool) {
	m.mu.Lock()
	if len(m.edges) >= maxPendingEdges {
		m.dropped++
	} else {
		m.edges = append(m.edges, edge{name: name, active: active})
	}
	m.mu.Unlock()
	m.signal()
}

func (m *mailbox) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() (edges []edge, st *Status, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	edges, st, dropped = m.edges, m.status, m.dropped
	m.edges, m.status, m.dropped = nil, nil, 0
	return edges, st, dropped
}

// notify delivers queued events to the observers until done is closed.
func (s *Station) notify(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-s.mail.wake:
			s.deliver()
		}
	}
}

// deliver runs the observers for everything queued so far: pulse edges in
// order, then the newest status.
func (s *Station) deliver() {
	edges, st, dropped := s.mail.take()
	if dropped > 0 {
		log.Printf("Station: observers behind, dropped %d pulse edges", dropped)
	}
	for _, e := range edges {
		for _, fn := range s.onPulse {
			fn(e.name, e.active)
		}
	}
	if st != nil {
		for _, fn := range s.onStatus {
			fn(*st)
		}
	}
}

// Package web serves the control panel: one HTML page, one plain-text route
// per actuator, the LED toggle and the JSON status routes.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"petfeeder/station"
)

//go:embed templates/index.html
var templates embed.FS

// Submitter is the part of the station the HTTP handlers use.
type Submitter interface {
	Submit(ctx context.Context, cmd station.Command) (station.Result, error)
}

// Observer counts requests per route. May be nil.
type Observer interface {
	ObserveRequest(route string)
}

// Route binds an HTTP path to an actuator.
type Route struct {
	Path     string
	Actuator string
	Label    string
	Ack      string
}

// Config holds HTTP settings.
type Config struct {
	Listen  string `yaml:"listen"`  // address to listen on, default ":80"
	Title   string `yaml:"title"`   // page <title>
	Heading string `yaml:"heading"` // page <h1>
}

// Server is the HTTP front end.
type Server struct {
	cfg      Config
	station  Submitter
	routes   []Route
	led      bool
	observer Observer
	metrics  http.Handler
	page     *template.Template
	srv      *http.Server
}

// Options configures a Server.
type Options struct {
	Config   Config
	Station  Submitter
	Routes   []Route
	LED      bool         // serve /toggle and /getState
	Observer Observer     // may be nil
	Metrics  http.Handler // served on /metrics when non-nil
}

// New creates a Server. It does not start listening.
func New(opts Options) (*Server, error) {
	page, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	cfg := opts.Config
	if cfg.Listen == "" {
		cfg.Listen = ":80"
	}
	if cfg.Title == "" {
		cfg.Title = "Pet Feeder"
	}
	if cfg.Heading == "" {
		cfg.Heading = cfg.Title
	}
	s := &Server{
		cfg:      cfg,
		station:  opts.Station,
		routes:   opts.Routes,
		led:      opts.LED,
		observer: opts.Observer,
		metrics:  opts.Metrics,
		page:     page,
	}
	s.srv = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the request multiplexer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", s.count("/", s.handleRoot))
	for _, r := range s.routes {
		mux.HandleFunc(r.Path, s.count(r.Path, s.handleTrigger(r)))
	}
	mux.HandleFunc("/getStatus", s.count("/getStatus", s.handleGetStatus))
	if s.led {
		mux.HandleFunc("/toggle", s.count("/toggle", s.handleToggle))
		mux.HandleFunc("/getState", s.count("/getState", s.handleGetState))
	}
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// Start listens and serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	log.Printf("Listening on http://0.0.0.0%s", s.cfg.Listen)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) count(route string, h http.HandlerFunc) http.HandlerFunc {
	if s.observer == nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s.observer.ObserveRequest(route)
		h(w, r)
	}
}

type sensorView struct {
	Key   string
	Label string
}

type pageData struct {
	Title     string
	Heading   string
	Actuators []Route
	Sensors   []sensorView
	HasLED    bool
	LEDOn     bool
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	res, ok := s.submit(w, r, station.Query())
	if !ok {
		return
	}
	data := pageData{
		Title:     s.cfg.Title,
		Heading:   s.cfg.Heading,
		Actuators: s.routes,
		HasLED:    s.led,
		LEDOn:     res.Status.LED,
	}
	for _, rd := range res.Status.Sensors {
		data.Sensors = append(data.Sensors, sensorView{Key: rd.Key, Label: rd.Label})
	}
	w.Header().Set("Content-Type", "text/html")
	if err := s.page.Execute(w, data); err != nil {
		log.Printf("Render page: %v", err)
	}
}

func (s *Server) handleTrigger(route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.submit(w, r, station.Trigger(route.Actuator)); !ok {
			return
		}
		writeText(w, "text/plain", route.Ack)
	}
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.submit(w, r, station.Toggle()); !ok {
		return
	}
	writeText(w, "text/plain", "OK")
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	res, ok := s.submit(w, r, station.Query())
	if !ok {
		return
	}
	writeText(w, "application/json", res.Status.SensorJSON())
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	res, ok := s.submit(w, r, station.Query())
	if !ok {
		return
	}
	writeText(w, "application/json", res.Status.LEDJSON())
}

// submit runs cmd on the station, writing an error response on failure.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, cmd station.Command) (station.Result, bool) {
	res, err := s.station.Submit(r.Context(), cmd)
	if err != nil {
		log.Printf("HTTP %s %s: %v", cmd.Kind, r.URL.Path, err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return res, false
	}
	return res, true
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

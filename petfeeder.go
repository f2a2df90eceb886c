package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petfeeder/actuator"
	"petfeeder/button"
	"petfeeder/eventpipe"
	"petfeeder/indicator"
	"petfeeder/metrics"
	"petfeeder/mqtt"
	"petfeeder/sensor"
	"petfeeder/station"
	"petfeeder/video"
	"petfeeder/web"
)

var myBuild string

// App holds the application state and dependencies.
type App struct {
	cfg        *Config
	controller *actuator.Controller
	poller     *sensor.Poller
	button     button.Input
	led        indicator.Indicator
	station    *station.Station
	web        *web.Server
	mqtt       *mqtt.Client
	topics     mqtt.Topics
	events     *eventpipe.EventPipe
	display    *video.Display
	metrics    *metrics.Metrics
	ctx        context.Context
	cancel     context.CancelFunc
}

func main() {
	fmt.Printf("petfeeder build %s\n", myBuild)

	cfgfile := flag.String("cfg", "petfeeder.cfg", "Config file")
	listen := flag.String("listen", "", "Override http.listen")
	flag.Parse()

	cfg, err := LoadConfig(*cfgfile)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	if *listen != "" {
		cfg.HTTP.Listen = *listen
	}

	// Create application context
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		cfg:    cfg,
		topics: mqtt.NewTopics(cfg.ClientID),
		ctx:    ctx,
		cancel: cancel,
	}

	// Initialize actuators
	app.controller, err = newController(cfg.Actuators)
	if err != nil {
		log.Fatalf("Init actuators: %v", err)
	}

	// Initialize sensors
	app.poller, err = sensor.New(cfg.Sensors)
	if err != nil {
		log.Fatalf("Init sensors: %v", err)
	}

	// Initialize button
	app.button, err = button.New(cfg.Button)
	if err != nil {
		log.Fatalf("Init button: %v", err)
	}

	// Initialize LED
	app.led, err = indicator.New(cfg.LED)
	if err != nil {
		log.Fatalf("Init LED: %v", err)
	}

	// Initialize display if enabled
	if cfg.Video.Enabled {
		if !video.ScreenSupported() {
			log.Fatalf("Video enabled but screen support not compiled in")
		}
		app.display, err = video.New(cfg.Video, cfg.LED.Enabled())
		if err != nil {
			log.Fatalf("Init display: %v", err)
		}
	}

	if cfg.Metrics {
		app.metrics = metrics.New()
	}

	app.station = station.New(station.Options{
		Controller: app.controller,
		Poller:     app.poller,
		Button:     app.button,
		Debounce:   cfg.Button.Debounce(),
		Lockout:    cfg.Button.Lockout(),
		Action:     cfg.Button.Action,
		LED:        app.led,
		Interval:   cfg.LoopInterval(),
	})
	// Observers run on the station's observer goroutine, so MQTT and the
	// display may block there without holding up actuator closes.
	app.station.OnStatus(app.onStatus)
	app.station.OnPulse(app.onPulse)

	// Initialize HTTP server
	opts := web.Options{
		Config:  cfg.HTTP,
		Station: app.station,
		Routes:  cfg.Routes(),
		LED:     cfg.LED.Enabled(),
	}
	if app.metrics != nil {
		opts.Observer = app.metrics
		opts.Metrics = app.metrics.Handler()
	}
	app.web, err = web.New(opts)
	if err != nil {
		log.Fatalf("Init web: %v", err)
	}

	// Initialize MQTT
	app.mqtt, err = mqtt.New(cfg.MQTT, mqtt.Options{
		ClientID:     cfg.ClientID,
		Availability: app.topics.Availability(),
		OnConnect:    app.onMQTTConnect,
		OnDisconnect: app.onMQTTDisconnect,
		OnMessage:    app.onMQTTMessage,
	})
	if err != nil {
		log.Fatalf("Init MQTT: %v", err)
	}

	// Initialize event pipe
	app.events, err = eventpipe.New(cfg.EventPipe, app.onPipeCommand)
	if err != nil {
		log.Fatalf("Init event pipe: %v", err)
	}

	// Start background goroutines
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := app.station.Run(ctx); err != nil {
			log.Printf("Station: %v", err)
		}
	}()
	go func() {
		if err := app.web.Start(); err != nil {
			log.Fatalf("HTTP server: %v", err)
		}
	}()
	go func() {
		if err := app.mqtt.Connect(ctx); err != nil {
			log.Printf("MQTT connect: %v", err)
		}
	}()
	if app.events != nil {
		go func() {
			if err := app.events.Run(ctx); err != nil {
				log.Printf("Event pipe: %v", err)
			}
		}()
	}
	if app.display != nil {
		go app.display.Run(ctx.Done())
	}

	log.Printf("Serving %d actuators, %d sensors on %s",
		len(cfg.Actuators), len(cfg.Sensors), cfg.HTTP.Listen)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	app.shutdown(loopDone)
	fmt.Println("Shutdown complete")
}

// newController builds the actuator set in configuration order.
func newController(cfgs []actuator.Config) (*actuator.Controller, error) {
	c := actuator.NewController(nil)
	for _, ac := range cfgs {
		out, err := actuator.NewOutput(ac)
		if err != nil {
			return nil, fmt.Errorf("actuator %s: %w", ac.Name, err)
		}
		if err := c.Add(ac.Name, ac.Pulse(), out); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// shutdown stops the loop first so the hardware is released by a single
// owner, then tears down the outer surfaces.
func (app *App) shutdown(loopDone <-chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := app.web.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}

	app.cancel()
	<-loopDone

	app.mqtt.Disconnect()
	if app.events != nil {
		app.events.Close()
	}
	if err := app.controller.Release(); err != nil {
		log.Printf("Release actuators: %v", err)
	}
	app.poller.Close()
	app.button.Release()
	app.led.Set(false)
	app.led.Release()
	if app.display != nil {
		app.display.Release()
	}
}

func (app *App) onStatus(st station.Status) {
	if app.metrics != nil {
		app.metrics.ObserveStatus(st)
	}
	if app.display != nil {
		app.display.Show(st)
	}
	app.publishStatus(st)
}

func (app *App) publishStatus(st station.Status) {
	app.mqtt.Publish(app.topics.Status(), true, st.SensorJSON())
	if app.cfg.LED.Enabled() {
		app.mqtt.Publish(app.topics.State(), true, st.LEDJSON())
	}
}

func (app *App) onPulse(name string, active bool) {
	log.Printf("Actuator %s active=%t", name, active)
	if app.metrics != nil {
		app.metrics.ObservePulse(name, active)
	}
	app.mqtt.Publish(app.topics.Pulse(), false, mqtt.PulsePayload(name, active))
}

func (app *App) onMQTTConnect() {
	if !app.mqtt.IsEnabled() {
		return
	}
	if err := app.mqtt.Subscribe(app.topics.TriggerFilter()); err != nil {
		log.Printf("Subscribe error: %v", err)
	}
	if app.cfg.LED.Enabled() {
		if err := app.mqtt.Subscribe(app.topics.Toggle()); err != nil {
			log.Printf("Subscribe error: %v", err)
		}
	}

	// Republish retained state after a reconnect
	res, err := app.station.Submit(app.ctx, station.Query())
	if err != nil {
		return
	}
	app.publishStatus(res.Status)
}

func (app *App) onMQTTDisconnect() {
	log.Println("MQTT offline, HTTP control unaffected")
}

func (app *App) onMQTTMessage(topic string, payload []byte) {
	if topic == app.topics.Toggle() {
		app.submit("mqtt", station.Toggle())
		return
	}
	if name, ok := app.topics.ParseTrigger(topic); ok {
		app.submit("mqtt", station.Trigger(name))
	}
}

func (app *App) onPipeCommand(cmd station.Command) {
	res, ok := app.submit("pipe", cmd)
	if ok && cmd.Kind == station.KindStatus {
		log.Printf("Status: %s led=%t", res.Status.SensorJSON(), res.Status.LED)
	}
}

// submit runs cmd on the station loop and logs the outcome.
func (app *App) submit(source string, cmd station.Command) (station.Result, bool) {
	res, err := app.station.Submit(app.ctx, cmd)
	if err != nil {
		log.Printf("%s %s %s: %v", source, cmd.Kind, cmd.Target, err)
		return res, false
	}
	if cmd.Kind == station.KindTrigger && !res.Started {
		log.Printf("%s: %s already active", source, cmd.Target)
	}
	return res, true
}

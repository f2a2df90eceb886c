package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfeeder/actuator"
	"petfeeder/sensor"
	"petfeeder/station"
)

type routeCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *routeCounter) ObserveRequest(route string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[route]++
}

func (c *routeCounter) get(route string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[route]
}

type fixture struct {
	ts    *httptest.Server
	st    *station.Station
	food  *sensor.Static
	water *sensor.Static
}

func newFixture(t *testing.T, led bool, obs Observer) *fixture {
	t.Helper()
	f := &fixture{
		food:  sensor.NewStatic(0),
		water: sensor.NewStatic(100),
	}

	ctrl := actuator.NewController(nil)
	require.NoError(t, ctrl.Add("comida", 700*time.Millisecond, nil))
	require.NoError(t, ctrl.Add("agua", 2000*time.Millisecond, nil))

	p := sensor.NewPoller()
	require.NoError(t, p.Add("comida", "Comida en plato", f.food, sensor.PredLow, 0))
	require.NoError(t, p.Add("agua", "Agua en deposito", f.water, sensor.PredAbove, 1000))

	f.st = station.New(station.Options{Controller: ctrl, Poller: p})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.st.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	srv, err := New(Options{
		Config:  Config{Title: "Pet Feeder", Heading: "Dispensador de Mascotas"},
		Station: f.st,
		Routes: []Route{
			{Path: "/dispensarComida", Actuator: "comida", Label: "Dispensar Comida", Ack: "Comida dispensada"},
			{Path: "/dispensarAgua", Actuator: "agua", Label: "Dispensar Agua", Ack: "Agua dispensada"},
		},
		LED:      led,
		Observer: obs,
	})
	require.NoError(t, err)

	f.ts = httptest.NewServer(srv.Handler())
	t.Cleanup(f.ts.Close)
	return f
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestGetStatus(t *testing.T) {
	f := newFixture(t, false, nil)

	resp, body := get(t, f.ts.URL+"/getStatus")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, `{"comida": true, "agua": false}`, body)
}

func TestTriggerRouteAcks(t *testing.T) {
	f := newFixture(t, false, nil)

	resp, body := get(t, f.ts.URL+"/dispensarComida")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Equal(t, "Comida dispensada", body)

	// A second request inside the pulse is still acknowledged.
	resp, body = get(t, f.ts.URL+"/dispensarComida")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Comida dispensada", body)

	res, err := f.st.Submit(context.Background(), station.Query())
	require.NoError(t, err)
	assert.Contains(t, res.Status.Actuators, actuator.State{Name: "comida", Active: true})
}

func TestRootPage(t *testing.T) {
	f := newFixture(t, false, nil)

	resp, body := get(t, f.ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<h1>Dispensador de Mascotas</h1>")
	assert.Contains(t, body, "Dispensar Comida")
	assert.Contains(t, body, "/dispensarAgua")
	assert.Contains(t, body, "/getStatus")
	assert.NotContains(t, body, "/toggle")
}

func TestUnknownRouteIs404(t *testing.T) {
	f := newFixture(t, false, nil)

	resp, _ := get(t, f.ts.URL+"/limpiarPlato")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, f.ts.URL+"/toggle")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no LED configured")
}

func TestToggleAndGetState(t *testing.T) {
	f := newFixture(t, true, nil)

	_, body := get(t, f.ts.URL+"/getState")
	assert.Equal(t, `{"state": false}`, body)

	resp, body := get(t, f.ts.URL+"/toggle")
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Equal(t, "OK", body)

	_, body = get(t, f.ts.URL+"/getState")
	assert.Equal(t, `{"state": true}`, body)

	_, body = get(t, f.ts.URL+"/")
	assert.Contains(t, body, "ENCENDIDO")
	assert.Contains(t, body, "APAGAR")
}

func TestRequestsAreCounted(t *testing.T) {
	obs := &routeCounter{counts: map[string]int{}}
	f := newFixture(t, false, obs)

	get(t, f.ts.URL+"/getStatus")
	get(t, f.ts.URL+"/getStatus")
	get(t, f.ts.URL+"/dispensarAgua")

	assert.Equal(t, 2, obs.get("/getStatus"))
	assert.Equal(t, 1, obs.get("/dispensarAgua"))
}

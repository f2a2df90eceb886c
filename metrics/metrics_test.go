package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfeeder/sensor"
	"petfeeder/station"
)

func TestObservePulse(t *testing.T) {
	m := New()
	m.ObservePulse("comida", true)
	m.ObservePulse("comida", false)
	m.ObservePulse("comida", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pulses.WithLabelValues("comida")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.active.WithLabelValues("comida")))
}

func TestObserveStatus(t *testing.T) {
	m := New()
	m.ObserveStatus(station.Status{
		Sensors: []sensor.Reading{{Key: "comida", Present: true}, {Key: "agua"}},
		LED:     true,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sensors.WithLabelValues("comida")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sensors.WithLabelValues("agua")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.led))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRequest("/getStatus")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `petfeeder_http_requests_total{route="/getStatus"} 1`)
}

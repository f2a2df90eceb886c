package mqtt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopics(t *testing.T) {
	tp := NewTopics("feeder1")
	assert.Equal(t, "petfeeder/feeder1/status", tp.Status())
	assert.Equal(t, "petfeeder/feeder1/availability", tp.Availability())
	assert.Equal(t, "petfeeder/feeder1/trigger/+", tp.TriggerFilter())
	assert.Equal(t, "petfeeder/feeder1/trigger/comida", tp.Trigger("comida"))

	name, ok := tp.ParseTrigger("petfeeder/feeder1/trigger/agua")
	require.True(t, ok)
	assert.Equal(t, "agua", name)

	for _, topic := range []string{
		"petfeeder/feeder1/trigger/",
		"petfeeder/feeder1/trigger/a/b",
		"petfeeder/other/trigger/agua",
		"petfeeder/feeder1/toggle",
	} {
		_, ok := tp.ParseTrigger(topic)
		assert.False(t, ok, topic)
	}
}

func TestPulsePayload(t *testing.T) {
	assert.Equal(t, `{"actuator":"comida","active":true}`, PulsePayload("comida", true))
}

func TestDisabledClient(t *testing.T) {
	connected := false
	c, err := New(Config{}, Options{ClientID: "feeder1", OnConnect: func() { connected = true }})
	require.NoError(t, err)
	assert.False(t, c.IsEnabled())

	require.NoError(t, c.Connect(context.Background()))
	assert.True(t, connected)

	require.NoError(t, c.Subscribe("x"))
	c.Publish("x", false, "y")
	c.Disconnect()
}

func TestBrokerURL(t *testing.T) {
	url, tlsCfg, err := brokerURL(Config{Host: "broker.local"})
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker.local:1883", url)
	assert.Nil(t, tlsCfg)

	_, _, err = brokerURL(Config{Host: "broker.local", CACert: "/does/not/exist.pem"})
	assert.Error(t, err)

	ca := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(ca, []byte("not a certificate"), 0o600))
	_, _, err = brokerURL(Config{Host: "broker.local", CACert: ca})
	assert.Error(t, err)
}

func TestClientOptions(t *testing.T) {
	c := &Client{opts: Options{ClientID: "feeder1", Availability: "petfeeder/feeder1/availability"}}
	po, err := c.clientOptions(Config{Host: "broker.local", Port: 1884, Username: "u", Password: "p"})
	require.NoError(t, err)

	require.Len(t, po.Servers, 1)
	assert.Equal(t, "tcp://broker.local:1884", po.Servers[0].String())
	assert.Equal(t, "feeder1", po.ClientID)
	assert.Equal(t, "u", po.Username)
	assert.True(t, po.AutoReconnect)
	assert.Equal(t, writeTimeout, po.WriteTimeout)
	assert.True(t, po.WillEnabled)
	assert.True(t, po.WillRetained)
	assert.Equal(t, "petfeeder/feeder1/availability", po.WillTopic)
	assert.Equal(t, []byte("offline"), po.WillPayload)
}

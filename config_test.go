package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfeeder/actuator"
	"petfeeder/web"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "petfeeder.cfg")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFeederConfigs(t *testing.T) {
	for _, tt := range []struct {
		file  string
		level string
	}{
		{"configs/feeder.yaml", "high"},
		{"configs/feeder-inverted.yaml", "low"},
	} {
		t.Run(tt.file, func(t *testing.T) {
			cfg, err := LoadConfig(tt.file)
			require.NoError(t, err)

			require.Len(t, cfg.Actuators, 3)
			assert.Equal(t, tt.level, cfg.Actuators[1].ActiveLevel)
			assert.Equal(t, 2000, cfg.Actuators[1].PulseMs)
			assert.Equal(t, []web.Route{
				{Path: "/dispensarComida", Actuator: "comida", Label: "Dispensar Comida", Ack: "Comida dispensada"},
				{Path: "/dispensarAgua", Actuator: "agua", Label: "Dispensar Agua", Ack: "Agua dispensada"},
				{Path: "/limpiarPlato", Actuator: "limpieza", Label: "Limpiar Plato", Ack: "Plato limpiado"},
			}, cfg.Routes())

			require.Len(t, cfg.Sensors, 2)
			assert.Equal(t, "comida", cfg.Sensors[0].Key)
			assert.Equal(t, "agua", cfg.Sensors[1].Key)
			assert.False(t, cfg.LED.Enabled())
		})
	}
}

func TestLoadLEDConfig(t *testing.T) {
	cfg, err := LoadConfig("configs/led.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.LED.Enabled())
	assert.Equal(t, "toggle", cfg.Button.Action)
	assert.Equal(t, "Control LED", cfg.HTTP.Title)
	assert.Empty(t, cfg.Routes())
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
actuators:
  - name: comida
    pulse_ms: 700
    route: /dispensarComida
`))
	require.NoError(t, err)
	assert.Equal(t, "petfeeder", cfg.ClientID)
	assert.Equal(t, "comida", cfg.Actuators[0].Label)
	assert.Equal(t, "OK", cfg.Actuators[0].Ack)
	assert.Zero(t, cfg.LoopInterval())
}

func TestConfigValidation(t *testing.T) {
	tests := map[string]string{
		"zero pulse": `
actuators:
  - name: a
    pulse_ms: 0
`,
		"duplicate name": `
actuators:
  - {name: a, pulse_ms: 10}
  - {name: a, pulse_ms: 10}
`,
		"reserved route": `
actuators:
  - {name: a, pulse_ms: 10, route: /getStatus}
`,
		"relative route": `
actuators:
  - {name: a, pulse_ms: 10, route: dispensar}
`,
		"duplicate route": `
actuators:
  - {name: a, pulse_ms: 10, route: /x}
  - {name: b, pulse_ms: 10, route: /x}
`,
		"bad level": `
actuators:
  - {name: a, pulse_ms: 10, active_level: sideways}
`,
		"duplicate sensor": `
sensors:
  - {key: agua}
  - {key: agua}
`,
		"unknown button action": `
button:
  type: gpio
  action: bomba
`,
		"unknown field": `
actuator: []
`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestNewController(t *testing.T) {
	c, err := newController([]actuator.Config{
		{Name: "comida", PulseMs: 700},
		{Name: "agua", PulseMs: 2000},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"comida", "agua"}, c.Names())

	_, err = newController([]actuator.Config{{Name: "x", PulseMs: 10}, {Name: "x", PulseMs: 10}})
	assert.Error(t, err)
}

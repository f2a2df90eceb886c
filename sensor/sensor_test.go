package sensor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Read() (int, error) { return 0, errors.New("bus error") }
func (failingSource) Close() error { return nil }

func TestPredicateApply(t *testing.T) {
	tests := []struct {
		name      string
		pred      Predicate
		raw       int
		threshold int
		want      bool
	}{
		{"IRBeamBrokenLow", PredLow, 0, 0, true},
		{"IRBeamClearHigh", PredLow, 1, 0, false},
		{"HighPresent", PredHigh, 1, 0, true},
		{"WaterAboveThreshold", PredAbove, 1001, 1000, true},
		{"WaterAtThreshold", PredAbove, 1000, 1000, false},
		{"BelowThreshold", PredBelow, 10, 20, true},
		{"NotBelowThreshold", PredBelow, 20, 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.Apply(tt.raw, tt.threshold))
		})
	}
}

func TestParsePredicate(t *testing.T) {
	p, err := ParsePredicate("Above")
	require.NoError(t, err)
	assert.Equal(t, PredAbove, p)

	_, err = ParsePredicate("between")
	assert.Error(t, err)
}

func TestPollAllOverwritesFlags(t *testing.T) {
	food := NewStatic(0)
	water := NewStatic(500)

	p := NewPoller()
	require.NoError(t, p.Add("comida", "Comida en plato", food, PredLow, 0))
	require.NoError(t, p.Add("agua", "", water, PredAbove, 1000))

	p.PollAll()
	assert.Equal(t, []Reading{
		{Key: "comida", Label: "Comida en plato", Present: true},
		{Key: "agua", Label: "agua", Present: false},
	}, p.Flags())

	food.Set(1)
	water.Set(2000)
	p.PollAll()

	present, ok := p.Present("comida")
	require.True(t, ok)
	assert.False(t, present)
	present, ok = p.Present("agua")
	require.True(t, ok)
	assert.True(t, present)

	_, ok = p.Present("missing")
	assert.False(t, ok)
}

func TestPollAllClearsFlagOnError(t *testing.T) {
	p := NewPoller()
	require.NoError(t, p.Add("agua", "", failingSource{}, PredBelow, 100))

	p.PollAll()
	present, _ := p.Present("agua")
	assert.False(t, present)
}

func TestAddRejectsDuplicateKey(t *testing.T) {
	p := NewPoller()
	require.NoError(t, p.Add("agua", "", NewStatic(0), PredLow, 0))
	assert.Error(t, p.Add("agua", "", NewStatic(0), PredLow, 0))
}

func TestNewFromConfig(t *testing.T) {
	p, err := New([]Config{
		{Key: "comida", Type: "static", Predicate: "low", Value: 0},
		{Key: "agua", Type: "static", Predicate: "above", Threshold: 1000, Value: 1500},
	})
	require.NoError(t, err)
	p.PollAll()

	flags := p.Flags()
	require.Len(t, flags, 2)
	assert.True(t, flags[0].Present)
	assert.True(t, flags[1].Present)

	_, err = New([]Config{{Key: "x", Type: "laser", Predicate: "low"}})
	assert.Error(t, err)

	_, err = New([]Config{{Key: "x", Type: "static", Predicate: "sideways"}})
	assert.Error(t, err)
}

func TestIIORead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	require.NoError(t, os.WriteFile(path, []byte("1234\n"), 0644))

	v, err := NewIIO(path).Read()
	require.NoError(t, err)
	assert.Equal(t, 1234, v)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))
	_, err = NewIIO(path).Read()
	assert.Error(t, err)

	_, err = NewIIO(filepath.Join(t.TempDir(), "missing")).Read()
	assert.Error(t, err)
}

func TestParseSample(t *testing.T) {
	tests := []struct {
		line    string
		channel string
		want    int
		ok      bool
	}{
		{"1234", "", 1234, true},
		{"A0:1500", "A0", 1500, true},
		{"A1:1500", "A0", 0, false},
		{" A0 : 42 ", "A0", 42, true},
		{"# boot", "", 0, false},
		{"", "", 0, false},
		{"A0:abc", "A0", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseSample(tt.line, tt.channel)
		assert.Equal(t, tt.ok, ok, "line %q", tt.line)
		assert.Equal(t, tt.want, got, "line %q", tt.line)
	}
}

func TestNewSourceErrorReturnsNilSource(t *testing.T) {
	src, err := NewSource(Config{Key: "agua", Type: "serial", Device: "/dev/does-not-exist"})
	assert.Error(t, err)
	assert.Nil(t, src)
}

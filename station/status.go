package station

import (
	"encoding/json"
	"strconv"
	"strings"

	"petfeeder/actuator"
	"petfeeder/sensor"
)

// Status is a snapshot of everything the loop owns.
type Status struct {
	Sensors   []sensor.Reading
	LED       bool
	Actuators []actuator.State
}

// Equal reports whether two snapshots describe the same state.
func (s Status) Equal(o Status) bool {
	if s.LED != o.LED || len(s.Sensors) != len(o.Sensors) || len(s.Actuators) != len(o.Actuators) {
		return false
	}
	for i := range s.Sensors {
		if s.Sensors[i] != o.Sensors[i] {
			return false
		}
	}
	for i := range s.Actuators {
		if s.Actuators[i] != o.Actuators[i] {
			return false
		}
	}
	return true
}

// SensorJSON renders the sensor flags in configuration order, in the exact
// shape the control page expects: {"comida": true, "agua": false}.
func (s Status) SensorJSON() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, r := range s.Sensors {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Write(jsonString(r.Key))
		b.WriteString(": ")
		b.WriteString(strconv.FormatBool(r.Present))
	}
	b.WriteByte('}')
	return b.String()
}

// LEDJSON renders the LED state: {"state": true}.
func (s Status) LEDJSON() string {
	return `{"state": ` + strconv.FormatBool(s.LED) + `}`
}

// jsonString encodes s as a JSON string literal. Marshalling a string
// cannot fail; invalid UTF-8 becomes U+FFFD.
func jsonString(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

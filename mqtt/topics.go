package mqtt

import (
	"fmt"
	"strings"
)

// Topics builds the topic tree for one node:
//
//	petfeeder/<id>/availability    online/offline, retained
//	petfeeder/<id>/status          sensor flags, retained
//	petfeeder/<id>/state           LED state, retained
//	petfeeder/<id>/pulse           {"actuator":"x","active":true}
//	petfeeder/<id>/trigger/<name>  start a pulse (subscribed)
//	petfeeder/<id>/toggle          flip the LED (subscribed)
type Topics struct {
	base string
}

// NewTopics returns the topic tree for clientID.
func NewTopics(clientID string) Topics {
	return Topics{base: "petfeeder/" + clientID}
}

func (t Topics) Availability() string { return t.base + "/availability" }
func (t Topics) Status() string { return t.base + "/status" }
func (t Topics) State() string { return t.base + "/state" }
func (t Topics) Pulse() string { return t.base + "/pulse" }
func (t Topics) TriggerFilter() string { return t.base + "/trigger/+" }
func (t Topics) Toggle() string { return t.base + "/toggle" }

// Trigger returns the trigger topic for one actuator.
func (t Topics) Trigger(name string) string {
	return t.base + "/trigger/" + name
}

// ParseTrigger extracts the actuator name from a trigger topic.
func (t Topics) ParseTrigger(topic string) (string, bool) {
	name, ok := strings.CutPrefix(topic, t.base+"/trigger/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// PulsePayload renders one pulse edge.
func PulsePayload(name string, active bool) string {
	return fmt.Sprintf(`{"actuator":%q,"active":%t}`, name, active)
}

package decode

import (
	"encoding/json"
	"time"
)

// Measurement is one decoded value attributed to a logical sensor.
// Attrs carries extra attributes attached by propagation hooks.
type Measurement struct {
	SensorID  string
	Value     interface{}
	Attrs     map[string]interface{}
	CreatedAt time.Time
}

// SetAttr attaches an extra attribute, allocating the map on first use.
func (m *Measurement) SetAttr(name string, value interface{}) {
	if m.Attrs == nil {
		m.Attrs = make(map[string]interface{})
	}
	m.Attrs[name] = value
}

// MarshalJSON flattens the extra attributes beside sensor_id and value.
func (m Measurement) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Attrs)+3)
	for k, v := range m.Attrs {
		out[k] = v
	}
	out["sensor_id"] = m.SensorID
	out["value"] = m.Value
	if !m.CreatedAt.IsZero() {
		out["created_at"] = m.CreatedAt
	}
	return json.Marshal(out)
}

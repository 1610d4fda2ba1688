package decode

// PropagateConfig configures a carrier propagation hook. The value decoded
// for SensorID is lifted into an extra attribute on the measurements that
// follow the carrier, the carrier itself is dropped from the result.
type PropagateConfig struct {
	// SensorID identifies the carrier measurement.
	SensorID string

	// Attr is the attribute name set on the annotated measurements.
	Attr string

	// Transform optionally maps the carrier value before propagation.
	Transform func(v interface{}) interface{}
}

// Propagate returns a hook that consumes the first carrier occurrence:
// it removes the carrier from the sequence and sets Attr to the carrier's
// value on every following measurement, stopping at the next occurrence of
// the same sensor id. That later entry is left untouched. A single hook
// invocation processes one carrier only.
func Propagate(cfg PropagateConfig) Hook {
	return func(ms []Measurement) []Measurement {
		at := -1
		for i, m := range ms {
			if m.SensorID == cfg.SensorID {
				at = i
				break
			}
		}
		if at < 0 {
			return ms
		}

		v := ms[at].Value
		if cfg.Transform != nil {
			v = cfg.Transform(v)
		}

		ms = append(ms[:at], ms[at+1:]...)

		for i := at; i < len(ms); i++ {
			if ms[i].SensorID == cfg.SensorID {
				break
			}
			ms[i].SetAttr(cfg.Attr, v)
		}

		return ms
	}
}

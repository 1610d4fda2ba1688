// Package validate holds the final validation and casting step applied to
// decoded measurement sequences before they leave the pipeline.
package validate

import (
	"context"
	"fmt"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
)

// Schema checks every measurement against the device record: the sensor must
// be registered on the device and the value must be a number or a string.
type Schema struct{}

func (Schema) Validate(ctx context.Context, dev *device.Device, ms []decode.Measurement) error {
	ids := make(map[string]bool, len(dev.Sensors))
	for _, s := range dev.Sensors {
		ids[s.ID] = true
	}

	for _, m := range ms {
		if !ids[m.SensorID] {
			return fmt.Errorf("measurement for unknown sensor %q on device %s", m.SensorID, dev.ID)
		}
		switch m.Value.(type) {
		case int, int32, int64, uint, uint32, uint64, float32, float64, string:
		default:
			return fmt.Errorf("invalid value type %T for sensor %q", m.Value, m.SensorID)
		}
	}

	return nil
}

// Nop accepts every measurement sequence.
type Nop struct{}

func (Nop) Validate(ctx context.Context, dev *device.Device, ms []decode.Measurement) error {
	return nil
}

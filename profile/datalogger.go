package profile

import (
	"fmt"
	"time"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
)

func init() {
	Register("datalogger", buildDatalogger)
}

var dataloggerSpec = decode.MatchingSpec{
	"clock": {
		{Attr: "title", Aliases: []string{"timestamp", "clock", "time"}},
		{Attr: "type", Aliases: []string{"timestamp", "clock"}},
	},
}

// buildDatalogger decodes buffered logger payloads: a 4 byte unix seconds
// header recorded by the device clock, then one 2 byte reading per remaining
// sensor in device order. The clock value is not a measurement on its own, it
// is propagated as created_at onto the readings and dropped.
func buildDatalogger(dev *device.Device, settings map[string]string) (decode.Transformer, error) {
	ids := decode.FindSensorIDs(dev.Sensors, dataloggerSpec)

	clockID, ok := ids["clock"]
	if !ok {
		return nil, fmt.Errorf("datalogger profile: device %s has no clock sensor", dev.ID)
	}

	tr := decode.Transformer{
		{
			Len:      4,
			SensorID: clockID,
			OnResult: decode.Propagate(decode.PropagateConfig{
				SensorID: clockID,
				Attr:     "created_at",
				Transform: func(v interface{}) interface{} {
					return time.Unix(v.(int64), 0).UTC()
				},
			}),
		},
	}

	for _, s := range dev.Sensors {
		if s.ID == clockID {
			continue
		}
		tr = append(tr, decode.Segment{Len: 2, SensorID: s.ID})
	}

	return tr, nil
}

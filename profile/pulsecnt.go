package profile

import (
	"strings"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
)

func init() {
	Register("pulsecnt", buildPulseCounter)
}

// pulse counter status byte flags
const (
	pulseFlagLowBattery = 1 << 0
	pulseFlagOverflow   = 1 << 1
	pulseFlagTamper     = 1 << 2
)

// buildPulseCounter decodes pulse counter payloads: 1 status byte followed by
// a 4 byte cumulative count and a 2 byte rate. The status byte is propagated
// as a textual status attribute on the readings and dropped from the output.
// The counter title aliases can be extended with the counter_title setting.
func buildPulseCounter(dev *device.Device, settings map[string]string) (decode.Transformer, error) {
	counterMatches := []decode.Match{
		{Attr: "title", Aliases: []string{"count", "counter", "pulses"}},
		{Attr: "type", Aliases: []string{"counter"}},
	}
	if t, ok := settings["counter_title"]; ok {
		counterMatches[0].Aliases = append([]string{t}, counterMatches[0].Aliases...)
	}

	spec := decode.MatchingSpec{
		"status":  {{Attr: "type", Aliases: []string{"status", "alarm"}}},
		"counter": counterMatches,
		"rate": {
			{Attr: "title", Aliases: []string{"rate", "flow"}},
			{Attr: "unit", Aliases: []string{"l/h", "p/h"}},
		},
	}
	ids := decode.FindSensorIDs(dev.Sensors, spec)

	tr := decode.Transformer{
		{Len: 1, SensorID: ids["status"]},
		{Len: 4, SensorID: ids["counter"]},
		{Len: 2, SensorID: ids["rate"], OnResult: discardUnassigned},
	}

	if statusID, ok := ids["status"]; ok {
		tr[0].OnResult = decode.Propagate(decode.PropagateConfig{
			SensorID:  statusID,
			Attr:      "status",
			Transform: pulseStatus,
		})
	}

	return tr, nil
}

// pulseStatus renders the status flag byte as a comma separated string.
func pulseStatus(v interface{}) interface{} {
	flags, _ := v.(int64)
	if flags == 0 {
		return "ok"
	}

	var out []string
	if flags&pulseFlagLowBattery != 0 {
		out = append(out, "low_battery")
	}
	if flags&pulseFlagOverflow != 0 {
		out = append(out, "overflow")
	}
	if flags&pulseFlagTamper != 0 {
		out = append(out, "tamper")
	}
	if len(out) == 0 {
		return "unknown"
	}
	return strings.Join(out, ",")
}

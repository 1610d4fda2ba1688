package profile

import (
	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
)

func init() {
	Register("thermohygro", buildThermoHygro)
}

var thermoHygroSpec = decode.MatchingSpec{
	"temperature": {
		{Attr: "title", Aliases: []string{"temperature", "temp"}},
		{Attr: "type", Aliases: []string{"temperature"}},
		{Attr: "unit", Aliases: []string{"°c", "c", "celsius"}},
	},
	"humidity": {
		{Attr: "title", Aliases: []string{"humidity", "hum"}},
		{Attr: "type", Aliases: []string{"humidity"}},
		{Attr: "unit", Aliases: []string{"%rh", "rh"}},
	},
	"battery": {
		{Attr: "title", Aliases: []string{"battery", "bat"}},
		{Attr: "type", Aliases: []string{"battery", "voltage"}},
		{Attr: "unit", Aliases: []string{"mv"}},
	},
}

// buildThermoHygro decodes the 5 byte temperature/humidity/battery payload:
// 2 bytes signed centi-degrees, 2 bytes centi-percent relative humidity,
// 1 byte battery level in 25 mV steps.
func buildThermoHygro(dev *device.Device, settings map[string]string) (decode.Transformer, error) {
	ids := decode.FindSensorIDs(dev.Sensors, thermoHygroSpec)

	return decode.Transformer{
		{
			Len:      2,
			SensorID: ids["temperature"],
			Decode: func(b []byte) interface{} {
				return float64(int16(decode.BytesToInt(b))) / 100
			},
		},
		{
			Len:      2,
			SensorID: ids["humidity"],
			Decode: func(b []byte) interface{} {
				return float64(decode.BytesToInt(b)) / 100
			},
		},
		{
			Len:      1,
			SensorID: ids["battery"],
			Decode: func(b []byte) interface{} {
				return decode.BytesToInt(b) * 25
			},
			OnResult: discardUnassigned,
		},
	}, nil
}

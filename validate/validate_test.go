package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
)

func testDevice() *device.Device {
	return &device.Device{
		ID:      "dev1",
		Sensors: []device.Sensor{{ID: "a"}, {ID: "b"}},
	}
}

func TestSchema(t *testing.T) {
	v := Schema{}
	ctx := context.Background()

	err := v.Validate(ctx, testDevice(), []decode.Measurement{
		{SensorID: "a", Value: int64(1)},
		{SensorID: "b", Value: "low_battery"},
	})
	require.NoError(t, err)

	err = v.Validate(ctx, testDevice(), []decode.Measurement{
		{SensorID: "unknown", Value: int64(1)},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown")

	err = v.Validate(ctx, testDevice(), []decode.Measurement{
		{SensorID: "a", Value: []byte{0x01}},
	})
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	err := Nop{}.Validate(context.Background(), testDevice(), []decode.Measurement{
		{SensorID: "whatever", Value: nil},
	})
	require.NoError(t, err)
}

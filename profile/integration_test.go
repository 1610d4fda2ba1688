package profile

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
	"github.com/akhenakh/sensortel/validate"
)

func TestDecodePipeline(t *testing.T) {
	dev := &device.Device{
		ID: "dev1",
		Sensors: []device.Sensor{
			{ID: "t1", Title: "Temperature"},
			{ID: "h1", Title: "Humidity"},
			{ID: "b1", Title: "Battery"},
		},
		Integrations: map[string]device.Integration{
			device.LoraChannel: {Profile: "thermohygro"},
		},
	}

	e := decode.NewEngine(log.NewNopLogger(), Build, validate.Schema{})

	// 21.50 °C, 55.00 %RH, 3000 mV
	buf := []byte{0x66, 0x08, 0x7C, 0x15, 0x78}
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	ms, err := e.Decode(context.Background(), buf, dev, ts)
	require.NoError(t, err)
	require.Len(t, ms, 3)

	require.Equal(t, "t1", ms[0].SensorID)
	require.Equal(t, 21.5, ms[0].Value)
	require.Equal(t, "h1", ms[1].SensorID)
	require.Equal(t, 55.0, ms[1].Value)
	require.Equal(t, "b1", ms[2].SensorID)
	require.Equal(t, int64(3000), ms[2].Value)

	for _, m := range ms {
		require.Equal(t, ts, m.CreatedAt)
	}
}

func TestDecodePipelineDatalogger(t *testing.T) {
	dev := &device.Device{
		ID: "dev1",
		Sensors: []device.Sensor{
			{ID: "clk", Title: "Clock"},
			{ID: "t1", Title: "Temperature"},
		},
		Integrations: map[string]device.Integration{
			device.LoraChannel: {Profile: "datalogger"},
		},
	}

	e := decode.NewEngine(log.NewNopLogger(), Build, validate.Schema{})

	// 2020-01-01T00:00:00Z followed by a single reading
	buf := []byte{0x00, 0xE1, 0x0B, 0x5E, 0x66, 0x08}

	ms, err := e.Decode(context.Background(), buf, dev, time.Now())
	require.NoError(t, err)
	require.Len(t, ms, 1)

	require.Equal(t, "t1", ms[0].SensorID)
	require.Equal(t, int64(2150), ms[0].Value)

	// the device clock wins over the supplied timestamp
	require.True(t, ms[0].CreatedAt.IsZero())
	require.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), ms[0].Attrs["created_at"])
}

package sink

import (
	"time"

	log "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/akhenakh/sensortel/decode"
)

// Influx writes measurements to an InfluxDB v2 bucket using the non blocking
// write API, points are batched and sent asynchronously.
type Influx struct {
	logger   log.Logger
	client   influxdb2.Client
	writeAPI api.WriteAPI
}

func NewInflux(logger log.Logger, url, token, org, bucket string) *Influx {
	logger = log.With(logger, "component", "influx")

	client := influxdb2.NewClient(url, token)
	writeAPI := client.WriteAPI(org, bucket)

	s := &Influx{
		logger:   logger,
		client:   client,
		writeAPI: writeAPI,
	}

	go func() {
		for err := range writeAPI.Errors() {
			level.Error(logger).Log("msg", "influx write failed", "error", err)
		}
	}()

	return s
}

// Write emits one point per measurement: measurement telemetry, tags
// device_id and sensor_id, the decoded value plus any propagated attributes
// as fields.
func (s *Influx) Write(deviceID string, ms []decode.Measurement) error {
	for _, m := range ms {
		t := m.CreatedAt
		if t.IsZero() {
			t = time.Now().UTC()
		}

		fields := make(map[string]interface{}, len(m.Attrs)+1)
		for k, v := range m.Attrs {
			fields[k] = v
		}
		fields["value"] = m.Value

		p := write.NewPoint(
			"telemetry",
			map[string]string{
				"device_id": deviceID,
				"sensor_id": m.SensorID,
			},
			fields,
			t,
		)
		s.writeAPI.WritePoint(p)
	}

	return nil
}

func (s *Influx) Close() {
	s.writeAPI.Flush()
	s.client.Close()
}

package sensortel

import (
	"context"
	"time"

	"github.com/TheThingsNetwork/ttn/core/types"
	log "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"google.golang.org/grpc/health"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
	"github.com/akhenakh/sensortel/metrics"
	"github.com/akhenakh/sensortel/sink"
	"github.com/akhenakh/sensortel/storage"
)

// Server handles uplink messages coming from the TTN application SDK,
// resolving the device record, decoding the payload and persisting the
// measurements.
type Server struct {
	appName string
	logger  log.Logger
	Health  *health.Server

	engine  *decode.Engine
	devices device.Repository
	store   storage.Store
	sinks   []sink.Sink
}

func NewServer(appName string, logger log.Logger, engine *decode.Engine,
	devices device.Repository, store storage.Store, sinks ...sink.Sink) *Server {
	logger = log.With(logger, "component", "server")
	return &Server{
		appName: appName,
		logger:  logger,
		engine:  engine,
		devices: devices,
		store:   store,
		sinks:   sinks,
	}
}

// HandleMessage handles one uplink message from TTN.
// Per message failures are logged and counted, never fatal.
func (s *Server) HandleMessage(ctx context.Context, msg *types.UplinkMessage) {
	metrics.MsgReceivedCounter.WithLabelValues(metrics.ReceivedViaTTN).Inc()

	if len(msg.PayloadRaw) == 0 {
		level.Debug(s.logger).Log("msg", "received msg with empty payload", "device_id", msg.DevID)
		return
	}

	dev, err := s.devices.Get(msg.DevID)
	if err != nil {
		level.Info(s.logger).Log("msg", "received msg for unknown device", "device_id", msg.DevID, "error", err)
		return
	}

	ts := time.Time(msg.Metadata.Time)
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	ms, err := s.engine.Decode(ctx, msg.PayloadRaw, dev, ts)
	if err != nil {
		metrics.DecodeErrorCounter.Inc()
		level.Info(s.logger).Log("msg", "can't decode uplink payload", "device_id", msg.DevID, "error", err)
		return
	}
	metrics.DecodedCounter.Inc()

	level.Debug(s.logger).Log("msg", "received msg", "device_id", msg.DevID, "measurements", len(ms))

	if err := s.store.Store(dev.ID, ms, ts); err != nil {
		level.Error(s.logger).Log("msg", "can't store measurements", "device_id", msg.DevID, "error", err)
		return
	}
	metrics.InsertCounter.Inc()

	for _, sk := range s.sinks {
		if err := sk.Write(dev.ID, ms); err != nil {
			level.Error(s.logger).Log("msg", "can't forward measurements", "device_id", msg.DevID, "error", err)
		}
	}
}

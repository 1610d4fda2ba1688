package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/brocaar/lorawan"
	log "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"google.golang.org/grpc/health"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
	"github.com/akhenakh/sensortel/metrics"
	"github.com/akhenakh/sensortel/sink"
	"github.com/akhenakh/sensortel/storage"
)

// Config holds the session keys used to validate and decrypt uplinks
// received straight from a packet forwarder.
type Config struct {
	NwkSKey lorawan.AES128Key
	AppSKey lorawan.AES128Key
}

// Server listens for Semtech UDP packet forwarder traffic, decrypts the
// LoRaWAN payloads and runs them through the decode engine.
type Server struct {
	appName string
	logger  log.Logger
	Health  *health.Server
	config  Config

	engine  *decode.Engine
	devices device.Repository
	store   storage.Store
	sinks   []sink.Sink

	udpConn *net.UDPConn
}

func NewServer(appName string, logger log.Logger, cfg Config, engine *decode.Engine,
	devices device.Repository, store storage.Store, sinks ...sink.Sink) *Server {
	logger = log.With(logger, "component", "ingest")
	return &Server{
		appName: appName,
		logger:  logger,
		config:  cfg,
		engine:  engine,
		devices: devices,
		store:   store,
		sinks:   sinks,
	}
}

func (s *Server) Close() {
	s.udpConn.Close()
}

func (s *Server) StartListener(ctx context.Context, addr string) error {
	ServerAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		level.Error(s.logger).Log("msg", "ingest server: failed to resolve", "error", err)
		return err
	}

	/* Now listen at selected port */
	s.udpConn, err = net.ListenUDP("udp", ServerAddr)
	if err != nil {
		level.Error(s.logger).Log("msg", "ingest server: failed to listen", "error", err)
		return err
	}

	level.Info(s.logger).Log("msg", fmt.Sprintf("GW UDP server listening at %s", addr))

	buf := make([]byte, 1024)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				n, addr, err := s.udpConn.ReadFromUDP(buf)
				if err != nil {
					level.Warn(s.logger).Log("msg", "error reading on the GW", "error", err)
					continue
				}
				err = s.handleUpstream(ctx, addr, buf[0:n])
				if err != nil {
					level.Error(s.logger).Log("msg", "error handling msg received on the GW", "error", err)
					continue
				}
			}
		}
	}()
	return nil
}

// decodeLora returns the device address and the decrypted application payload
func (s *Server) decodeLora(p []byte) (string, []byte, error) {
	var phy lorawan.PHYPayload

	if err := phy.UnmarshalBinary(p); err != nil {
		return "", nil, err
	}

	ok, err := phy.ValidateUplinkDataMIC(lorawan.LoRaWAN1_0, 0, 0, 0, s.config.NwkSKey, lorawan.AES128Key{})
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, errors.New("invalid mic")
	}

	if err := phy.DecodeFOptsToMACCommands(); err != nil {
		return "", nil, err
	}

	if err := phy.DecryptFRMPayload(s.config.AppSKey); err != nil {
		return "", nil, err
	}
	macPL, ok := phy.MACPayload.(*lorawan.MACPayload)
	if !ok {
		return "", nil, errors.New("MACPayload expected")
	}

	if len(macPL.FRMPayload) == 0 {
		return "", nil, errors.New("empty FRMPayload")
	}
	pl, ok := macPL.FRMPayload[0].(*lorawan.DataPayload)
	if !ok {
		return "", nil, errors.New("DataPayload expected")
	}

	return macPL.FHDR.DevAddr.String(), pl.Bytes, nil
}

// parsePushData validates the PUSH_DATA framing and returns the two byte
// random token, the eight byte gateway identifier and the JSON body.
//
//  Bytes  | Function
// :------:|---------------------------------------------------------------------
// 0       | protocol version = 2
// 1-2     | random token
// 3       | PUSH_DATA identifier 0x00
// 4-11    | Gateway unique identifier (MAC address)
// 12-end  | JSON object, starting with {, ending with }
func parsePushData(p []byte) (token, gwID, jsonb []byte, err error) {
	if len(p) < 12 {
		return nil, nil, nil, errors.New("invalid packet length")
	}

	if p[0] != 2 {
		return nil, nil, nil, errors.New("invalid packet protocol version")
	}

	if p[3] != 0x00 {
		return nil, nil, nil, errors.New("invalid packet not a PUSH_DATA")
	}

	return p[1:3], p[4:12], p[12:], nil
}

func (s *Server) handleUpstream(ctx context.Context, addr *net.UDPAddr, p []byte) error {
	token, gwID, jsonb, err := parsePushData(p)
	if err != nil {
		return err
	}

	ujson := &UpstreamJSON{}
	if err := json.Unmarshal(jsonb, &ujson); err != nil {
		return err
	}

	// this could be a stat packet
	if len(ujson.Rxpk) == 0 {
		return nil
	}

	for _, p := range ujson.Rxpk {
		p.GwID = gwID
		p.Token = token

		if p.Time.IsZero() {
			p.Time = time.Now().UTC()
		}

		metrics.MsgReceivedCounter.WithLabelValues(metrics.ReceivedViaGW).Inc()

		level.Debug(s.logger).Log("msg", "received rxpk",
			"modu", p.Modu, "freq", p.Freq, "rssi", p.Rssi, "size", p.Size)

		devAddr, payload, err := s.decodeLora(p.Data)
		if err != nil {
			level.Info(s.logger).Log("msg", "can't decode uplink lora packet", "error", err)
			continue
		}

		dev, err := s.devices.Get(devAddr)
		if err != nil {
			level.Info(s.logger).Log("msg", "received uplink for unknown device", "device_id", devAddr, "error", err)
			continue
		}

		ms, err := s.engine.Decode(ctx, payload, dev, p.Time)
		if err != nil {
			metrics.DecodeErrorCounter.Inc()
			level.Info(s.logger).Log("msg", "can't decode uplink payload", "device_id", dev.ID, "error", err)
			continue
		}
		metrics.DecodedCounter.Inc()

		if err := s.store.Store(dev.ID, ms, p.Time); err != nil {
			level.Error(s.logger).Log("msg", "can't store measurements in DB", "device_id", dev.ID, "error", err)
			continue
		}
		metrics.InsertCounter.Inc()

		for _, sk := range s.sinks {
			if err := sk.Write(dev.ID, ms); err != nil {
				level.Error(s.logger).Log("msg", "can't forward measurements", "device_id", dev.ID, "error", err)
			}
		}
	}

	return nil
}

package decode

import (
	"context"
	"encoding/base64"
	"time"

	log "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/akhenakh/sensortel/device"
)

// BuilderFunc builds the segment list for a named profile and a device
// record. It fails with UnsupportedProfileError for unknown names.
type BuilderFunc func(name string, dev *device.Device) (Transformer, error)

// Validator is the external validation collaborator invoked as the last
// decode step. Its errors are surfaced unchanged.
type Validator interface {
	Validate(ctx context.Context, dev *device.Device, ms []Measurement) error
}

// Engine turns raw payloads into measurement sequences using the decoding
// profile configured on the device. It holds no mutable state across calls.
type Engine struct {
	logger    log.Logger
	build     BuilderFunc
	validator Validator
}

// NewEngine returns a decode engine using build for profile resolution and
// validator for the final validation step.
func NewEngine(logger log.Logger, build BuilderFunc, validator Validator) *Engine {
	logger = log.With(logger, "component", "decode")
	return &Engine{
		logger:    logger,
		build:     build,
		validator: validator,
	}
}

// Decode runs the full pipeline over buf for the given device: profile
// resolution, length validation, segment slicing, post-processing hooks,
// timestamp stamping and external validation. Any failure aborts the call
// with no partial output. When ts is non-zero and the first measurement does
// not already carry a timestamp, every measurement is stamped with ts.
func (e *Engine) Decode(ctx context.Context, buf []byte, dev *device.Device, ts time.Time) ([]Measurement, error) {
	integ := dev.LoraIntegration()
	if integ == nil || integ.Profile == "" {
		return nil, &MissingConfigurationError{DeviceID: dev.ID}
	}

	tr, err := e.build(integ.Profile, dev)
	if err != nil {
		return nil, err
	}

	if want := tr.Size(); want != len(buf) {
		return nil, &LengthMismatchError{Expected: want, Got: len(buf)}
	}

	ms := make([]Measurement, 0, len(tr))
	var off int
	for _, seg := range tr {
		b := buf[off : off+seg.Len]
		off += seg.Len

		var v interface{}
		if seg.Decode != nil {
			v = seg.Decode(b)
		} else {
			v = BytesToInt(b)
		}
		ms = append(ms, Measurement{SensorID: seg.SensorID, Value: v})
	}

	for _, seg := range tr {
		if seg.OnResult != nil {
			ms = seg.OnResult(ms)
		}
	}

	if !ts.IsZero() && len(ms) > 0 && !ms[0].hasTimestamp() {
		for i := range ms {
			ms[i].CreatedAt = ts
		}
	}

	if e.validator != nil {
		if err := e.validator.Validate(ctx, dev, ms); err != nil {
			return nil, err
		}
	}

	level.Debug(e.logger).Log("msg", "decoded payload",
		"device_id", dev.ID, "profile", integ.Profile, "measurements", len(ms))

	return ms, nil
}

// DecodeBase64 decodes a base64 payload to bytes then runs Decode.
func (e *Engine) DecodeBase64(ctx context.Context, data string, dev *device.Device, ts time.Time) ([]Measurement, error) {
	buf, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	return e.Decode(ctx, buf, dev, ts)
}

// hasTimestamp reports whether the measurement already carries a creation
// time, either in CreatedAt or as a propagated created_at attribute.
func (m *Measurement) hasTimestamp() bool {
	if !m.CreatedAt.IsZero() {
		return true
	}
	_, ok := m.Attrs["created_at"]
	return ok
}

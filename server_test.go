package sensortel

import (
	"context"
	"testing"
	"time"

	"github.com/TheThingsNetwork/ttn/core/types"
	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
	"github.com/akhenakh/sensortel/profile"
	"github.com/akhenakh/sensortel/storage"
	"github.com/akhenakh/sensortel/validate"
)

type memRepository map[string]*device.Device

func (r memRepository) Get(id string) (*device.Device, error) {
	d, ok := r[id]
	if !ok {
		return nil, device.ErrNotFound
	}
	return d, nil
}

func (r memRepository) Put(d *device.Device) error { r[d.ID] = d; return nil }

func (r memRepository) Keys() ([]string, error) { return nil, nil }

type memStore struct {
	batches map[string][]decode.Measurement
}

func (s *memStore) Store(deviceID string, ms []decode.Measurement, t time.Time) error {
	if s.batches == nil {
		s.batches = make(map[string][]decode.Measurement)
	}
	s.batches[deviceID] = append(s.batches[deviceID], ms...)
	return nil
}

func (s *memStore) StoreTx(tx storage.Tx, deviceID string, ms []decode.Measurement, t time.Time) error {
	return s.Store(deviceID, ms, t)
}

func (s *memStore) GetAll(deviceID string, count int) ([]storage.Record, error) { return nil, nil }

func (s *memStore) Latest(deviceID string) (*storage.Record, error) { return nil, nil }

func (s *memStore) Keys() ([]string, error) { return nil, nil }

func (s *memStore) Begin() storage.Tx { return nil }

type recordingSink struct {
	writes int
}

func (s *recordingSink) Write(deviceID string, ms []decode.Measurement) error {
	s.writes++
	return nil
}

func (s *recordingSink) Close() {}

func TestHandleMessage(t *testing.T) {
	repo := memRepository{
		"mydev": {
			ID: "mydev",
			Sensors: []device.Sensor{
				{ID: "t1", Title: "Temperature"},
				{ID: "h1", Title: "Humidity"},
				{ID: "b1", Title: "Battery"},
			},
			Integrations: map[string]device.Integration{
				device.LoraChannel: {Profile: "thermohygro"},
			},
		},
	}

	store := &memStore{}
	sk := &recordingSink{}

	engine := decode.NewEngine(log.NewNopLogger(), profile.Build, validate.Schema{})
	s := NewServer("test", log.NewNopLogger(), engine, repo, store, sk)

	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s.HandleMessage(context.Background(), &types.UplinkMessage{
		DevID:      "mydev",
		PayloadRaw: []byte{0x66, 0x08, 0x7C, 0x15, 0x78},
		Metadata:   types.Metadata{Time: types.JSONTime(ts)},
	})

	require.Len(t, store.batches["mydev"], 3)
	require.Equal(t, 21.5, store.batches["mydev"][0].Value)
	require.Equal(t, ts, store.batches["mydev"][0].CreatedAt)
	require.Equal(t, 1, sk.writes)
}

func TestHandleMessageUnknownDevice(t *testing.T) {
	engine := decode.NewEngine(log.NewNopLogger(), profile.Build, validate.Schema{})
	store := &memStore{}
	s := NewServer("test", log.NewNopLogger(), engine, memRepository{}, store)

	s.HandleMessage(context.Background(), &types.UplinkMessage{
		DevID:      "ghost",
		PayloadRaw: []byte{0x01},
	})

	require.Len(t, store.batches, 0)
}

func TestHandleMessageDecodeError(t *testing.T) {
	repo := memRepository{
		"mydev": {
			ID: "mydev",
			Integrations: map[string]device.Integration{
				device.LoraChannel: {Profile: "thermohygro"},
			},
		},
	}

	engine := decode.NewEngine(log.NewNopLogger(), profile.Build, validate.Schema{})
	store := &memStore{}
	s := NewServer("test", log.NewNopLogger(), engine, repo, store)

	// wrong payload length, nothing must be stored
	s.HandleMessage(context.Background(), &types.UplinkMessage{
		DevID:      "mydev",
		PayloadRaw: []byte{0x01, 0x02},
	})

	require.Len(t, store.batches, 0)
}

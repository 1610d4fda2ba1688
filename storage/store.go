package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"time"

	"github.com/akhenakh/sensortel/decode"
)

const Prefix = "TS"

// MaxTime helper to query into the future
var MaxTime = time.Unix(0, math.MaxInt64)

// Store persists decoded measurement batches per device, newest first.
type Store interface {
	Store(deviceID string, ms []decode.Measurement, t time.Time) error
	StoreTx(tx Tx, deviceID string, ms []decode.Measurement, t time.Time) error
	GetAll(deviceID string, count int) ([]Record, error)
	Latest(deviceID string) (*Record, error)
	Keys() ([]string, error)
	Begin() Tx
}

type Tx interface {
	Discard()
	Commit() error
}

// Record is one stored measurement read back from the store. Fields holds
// the flattened measurement document (sensor_id, value, created_at and any
// propagated attributes).
type Record struct {
	DeviceID string
	SensorID string
	Time     time.Time
	Fields   map[string]interface{}
}

// DataKey builds the measurement key Prefix+"D"+deviceID+#+time+sensorID.
// The timestamp is stored reversed so iteration yields newest entries first.
func DataKey(deviceID string, t time.Time, sensorID string) []byte {
	dk := make([]byte, len(Prefix)+1+len(deviceID)+1+8+len(sensorID))
	copy(dk, Prefix+"D")
	copy(dk[len(Prefix)+1:], deviceID)
	dk[len(Prefix)+1+len(deviceID)] = '#'
	ts := int64tob(math.MaxInt64 - t.UnixNano())
	copy(dk[len(Prefix)+1+len(deviceID)+1:], ts)
	copy(dk[len(Prefix)+1+len(deviceID)+1+8:], sensorID)
	return dk
}

// DataPrefix returns the key prefix covering every measurement of a device.
func DataPrefix(deviceID string) []byte {
	dk := DataKey(deviceID, MaxTime, "")
	return dk[:len(dk)-8]
}

// ListKey returns the key used to list all devices seen by the store.
func ListKey(deviceID string) []byte {
	return []byte(Prefix + "L" + deviceID)
}

// ReadDataKey returns the device id, time and sensor id encoded in dk.
// Device ids must not contain '#'.
func ReadDataKey(dk []byte) (string, time.Time, string, error) {
	var t time.Time

	rest := dk[len(Prefix)+1:]
	sep := bytes.IndexByte(rest, '#')
	if sep < 0 || len(rest) < sep+1+8 {
		return "", t, "", errors.New("malformed data key")
	}

	deviceID := string(rest[:sep])

	ts := int64(binary.BigEndian.Uint64(rest[sep+1 : sep+1+8]))
	t = time.Unix(0, math.MaxInt64-ts).UTC()

	sensorID := string(rest[sep+1+8:])

	return deviceID, t, sensorID, nil
}

func int64tob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

package badger

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"

	"github.com/akhenakh/sensortel/decode"
)

func openStore(t *testing.T) (*badger.DB, func()) {
	dir, err := ioutil.TempDir("", "badger")
	require.NoError(t, err)

	opt := badger.DefaultOptions(dir)

	db, err := badger.Open(opt)
	require.NoError(t, err)

	return db, func() {
		if db != nil {
			db.Close()
		}
		os.RemoveAll(dir)
	}
}

func TestStoreMeasurements(t *testing.T) {
	bdb, clean := openStore(t)
	defer clean()

	s := &Store{DB: bdb}

	ts := time.Now().UTC()
	ms := []decode.Measurement{
		{SensorID: "temp1", Value: 21.5},
		{SensorID: "hum1", Value: 55.0, Attrs: map[string]interface{}{"status": "ok"}},
	}
	err := s.Store("DEV1", ms, ts)
	require.NoError(t, err)

	recs, err := s.GetAll("DEV1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		require.Equal(t, "DEV1", r.DeviceID)
		require.Equal(t, ts, r.Time)
	}

	recs, err = s.GetAll("UNKNOWN", 10)
	require.NoError(t, err)
	require.Len(t, recs, 0)
}

func TestNewestFirst(t *testing.T) {
	bdb, clean := openStore(t)
	defer clean()

	s := &Store{DB: bdb}

	old := time.Now().UTC().Add(-time.Hour)
	recent := time.Now().UTC()

	require.NoError(t, s.Store("DEV1", []decode.Measurement{{SensorID: "a", Value: int64(1)}}, old))
	require.NoError(t, s.Store("DEV1", []decode.Measurement{{SensorID: "a", Value: int64(2)}}, recent))

	rec, err := s.Latest("DEV1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, recent, rec.Time)
}

func TestKeys(t *testing.T) {
	bdb, clean := openStore(t)
	defer clean()

	s := &Store{DB: bdb}
	ts := time.Now().UTC()

	err := s.Store("DEV1", []decode.Measurement{{SensorID: "a", Value: int64(1)}}, ts)
	require.NoError(t, err)

	res, err := s.Keys()
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, "DEV1", res[0])
}

package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
	"github.com/akhenakh/sensortel/storage"
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
	records map[string][]storage.Record
}

func (s *memStore) Store(deviceID string, ms []decode.Measurement, t time.Time) error { return nil }

func (s *memStore) StoreTx(tx storage.Tx, deviceID string, ms []decode.Measurement, t time.Time) error {
	return nil
}

func (s *memStore) GetAll(deviceID string, count int) ([]storage.Record, error) {
	return s.records[deviceID], nil
}

func (s *memStore) Latest(deviceID string) (*storage.Record, error) { return nil, nil }

func (s *memStore) Keys() ([]string, error) {
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *memStore) Begin() storage.Tx { return nil }

func testRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/devices", s.DevicesQuery)
	r.HandleFunc("/api/data/{key}", s.DataQuery)
	r.HandleFunc("/api/device/{key}", s.DeviceQuery)
	return r
}

func TestDataQuery(t *testing.T) {
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &memStore{
		records: map[string][]storage.Record{
			"dev1": {
				{
					DeviceID: "dev1",
					SensorID: "t1",
					Time:     ts,
					Fields:   map[string]interface{}{"sensor_id": "t1", "value": 21.5},
				},
			},
		},
	}

	s := NewServer("test", log.NewNopLogger(), store, memRepository{}, Config{})

	req := httptest.NewRequest("GET", "/api/data/dev1", nil)
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var res []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res, 1)
	require.Equal(t, "dev1", res[0]["device_id"])
	require.Equal(t, "t1", res[0]["sensor_id"])
	require.Equal(t, 21.5, res[0]["value"])
}

func TestDevicesQuery(t *testing.T) {
	store := &memStore{records: map[string][]storage.Record{"dev1": nil}}
	s := NewServer("test", log.NewNopLogger(), store, memRepository{}, Config{})

	req := httptest.NewRequest("GET", "/api/devices", nil)
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var res []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, []string{"dev1"}, res)
}

func TestDeviceQuery(t *testing.T) {
	repo := memRepository{
		"dev1": {ID: "dev1", Sensors: []device.Sensor{{ID: "t1", Title: "Temperature"}}},
	}
	s := NewServer("test", log.NewNopLogger(), &memStore{}, repo, Config{})

	req := httptest.NewRequest("GET", "/api/device/dev1", nil)
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var dev device.Device
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dev))
	require.Equal(t, "dev1", dev.ID)

	req = httptest.NewRequest("GET", "/api/device/ghost", nil)
	w = httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

package badger

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"

	"github.com/akhenakh/sensortel/device"
)

func openRepo(t *testing.T) (*Repository, func()) {
	dir, err := ioutil.TempDir("", "badger")
	require.NoError(t, err)

	db, err := badger.Open(badger.DefaultOptions(dir))
	require.NoError(t, err)

	return &Repository{DB: db}, func() {
		if db != nil {
			db.Close()
		}
		os.RemoveAll(dir)
	}
}

func TestPutGet(t *testing.T) {
	r, clean := openRepo(t)
	defer clean()

	dev := &device.Device{
		ID:      "01020304",
		Name:    "greenhouse north",
		Sensors: []device.Sensor{{ID: "t1", Title: "Temperature", Unit: "°C"}},
		Integrations: map[string]device.Integration{
			device.LoraChannel: {Profile: "thermohygro"},
		},
	}

	require.NoError(t, r.Put(dev))

	got, err := r.Get("01020304")
	require.NoError(t, err)
	require.Equal(t, dev, got)

	integ := got.LoraIntegration()
	require.NotNil(t, integ)
	require.Equal(t, "thermohygro", integ.Profile)
}

func TestGetNotFound(t *testing.T) {
	r, clean := openRepo(t)
	defer clean()

	_, err := r.Get("unknown")
	require.Equal(t, device.ErrNotFound, err)
}

func TestRepoKeys(t *testing.T) {
	r, clean := openRepo(t)
	defer clean()

	require.NoError(t, r.Put(&device.Device{ID: "a"}))
	require.NoError(t, r.Put(&device.Device{ID: "b"}))

	keys, err := r.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)
}

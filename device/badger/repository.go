package badger

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v2"

	"github.com/akhenakh/sensortel/device"
)

// Prefix for the device records keyspace.
const Prefix = "TSV"

// Repository is a badger backed device.Repository.
type Repository struct {
	*badger.DB
}

func key(id string) []byte {
	return []byte(Prefix + id)
}

func (r *Repository) Get(id string) (*device.Device, error) {
	var d device.Device

	err := r.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err == badger.ErrKeyNotFound {
			return device.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &d)
		})
	})
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func (r *Repository) Put(d *device.Device) error {
	v, err := json.Marshal(d)
	if err != nil {
		return err
	}

	return r.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key(d.ID), v))
	})
}

func (r *Repository) Keys() ([]string, error) {
	var keys []string

	err := r.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(Prefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			keys = append(keys, string(k[len(Prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

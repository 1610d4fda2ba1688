package badger

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v2"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/storage"
)

// Store is a badger backed storage.Store.
type Store struct {
	*badger.DB
}

// StoreTx writes every measurement of the batch under the device keyspace
// and maintains the device listing key.
func (s *Store) StoreTx(txi storage.Tx, deviceID string, ms []decode.Measurement, t time.Time) error {
	tx, ok := txi.(*badger.Txn)
	if !ok {
		return errors.New("invalid tx passed")
	}

	for _, m := range ms {
		mt := t
		if !m.CreatedAt.IsZero() {
			mt = m.CreatedAt
		}

		v, err := json.Marshal(m)
		if err != nil {
			return err
		}

		dk := storage.DataKey(deviceID, mt, m.SensorID)
		if err := tx.SetEntry(badger.NewEntry(dk, v)); err != nil {
			return err
		}
	}

	return tx.SetEntry(badger.NewEntry(storage.ListKey(deviceID), nil))
}

// Store persists a decoded batch in a single transaction.
func (s *Store) Store(deviceID string, ms []decode.Measurement, t time.Time) error {
	txn := s.NewTransaction(true)
	defer txn.Discard()

	if err := s.StoreTx(txn, deviceID, ms, t); err != nil {
		return err
	}

	return txn.Commit()
}

// GetAll returns up to count measurements for deviceID, newest first.
func (s *Store) GetAll(deviceID string, count int) ([]storage.Record, error) {
	var res []storage.Record
	existing := 0
	err := s.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = count
		if opts.PrefetchSize <= 0 {
			opts.PrefetchSize = 10
		}
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := storage.DataPrefix(deviceID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if count > 0 && existing >= count {
				break
			}

			item := it.Item()
			k := item.KeyCopy(nil)
			dev, t, sensorID, err := storage.ReadDataKey(k)
			if err != nil {
				return err
			}

			valc, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			var fields map[string]interface{}
			if err := json.Unmarshal(valc, &fields); err != nil {
				return err
			}

			res = append(res, storage.Record{
				DeviceID: dev,
				SensorID: sensorID,
				Time:     t,
				Fields:   fields,
			})
			existing++
		}
		return nil
	})

	return res, err
}

// Latest returns the most recent measurement for deviceID, nil when none.
func (s *Store) Latest(deviceID string) (*storage.Record, error) {
	res, err := s.GetAll(deviceID, 1)
	if err != nil {
		return nil, err
	}
	if len(res) != 1 {
		return nil, nil
	}
	return &res[0], err
}

// Keys lists all devices ever stored.
func (s *Store) Keys() ([]string, error) {
	var res []string
	err := s.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(storage.Prefix + "L")

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			k := item.KeyCopy(nil)
			res = append(res, string(k[len(storage.Prefix)+1:]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Begin starts a read write transaction.
func (s *Store) Begin() storage.Tx {
	return s.NewTransaction(true)
}

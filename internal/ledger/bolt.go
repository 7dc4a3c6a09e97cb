package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/boltdb/bolt"
)

var bucketName = []byte("expenses")

// BoltStore keeps ledger records in a bolt database file, one JSON value per
// record keyed by the big-endian record id.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens the database at path. A read-only store requires the file
// to exist; a writable one creates it.
func OpenBolt(path string, readOnly bool) (*BoltStore, error) {
	if readOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("opening ledger %s: %w", path, err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

// Records returns every stored record in id order. A database without the
// expenses bucket holds no records.
func (s *BoltStore) Records(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("reading bolt ledger: %w", err)
	}
	return records, nil
}

// Save writes records in one transaction, replacing any with the same id.
func (s *BoltStore) Save(records []Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		for _, rec := range records {
			v, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encoding record %d: %w", rec.ID, err)
			}
			if err := b.Put(recordKey(rec.ID), v); err != nil {
				return fmt.Errorf("writing record %d: %w", rec.ID, err)
			}
		}
		return nil
	})
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func recordKey(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

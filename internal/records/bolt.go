package records

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixil98/go-mudmaze/internal/game"
	bbolt "go.etcd.io/bbolt"
)

var bucketEscapes = []byte("escapes")

// BoltStore keeps the log in a bbolt bucket keyed by a big-endian sequence,
// so cursor order is append order.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens or creates the database file at path.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEscapes)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating escapes bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(context.Context) ([]game.EscapeRecord, error) {
	var out []game.EscapeRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEscapes).ForEach(func(k, v []byte) error {
			var rec game.EscapeRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding escape %d: %w", binary.BigEndian.Uint64(k), err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) Append(_ context.Context, rec game.EscapeRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding escape %s: %w", rec.ID, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEscapes)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

package webhook

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/onexay/gitobs/internal/types"
)

const (
	boltRootBucket = "hooks"
)

// BoltArchive journals deliveries inside a BoltDB file, one bucket per hook.
type BoltArchive struct {
	db   *bolt.DB
	once sync.Once
}

// NewBoltArchive opens (or creates) a BoltDB archive at the provided path.
func NewBoltArchive(path string) (*BoltArchive, error) {
	if path == "" {
		return nil, errors.New("archive path is required")
	}

	cleaned := filepath.Clean(path)
	if dir := filepath.Dir(cleaned); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(cleaned, 0o600, nil)
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltRootBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltArchive{db: db}, nil
}

// Deliver appends delivery to its hook's bucket under the next sequence number.
func (a *BoltArchive) Deliver(ctx context.Context, delivery types.Delivery) error {
	payload, err := json.Marshal(delivery)
	if err != nil {
		return err
	}

	return a.db.Update(func(tx *bolt.Tx) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		root := tx.Bucket([]byte(boltRootBucket))
		if root == nil {
			return errors.New("archive root bucket missing")
		}

		hookBucket, err := root.CreateBucketIfNotExists([]byte(delivery.HookID))
		if err != nil {
			return err
		}

		seq, err := hookBucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return hookBucket.Put(key, payload)
	})
}

// Deliveries returns the hook's journal in delivery order.
func (a *BoltArchive) Deliveries(ctx context.Context, hookID string) ([]types.Delivery, error) {
	result := []types.Delivery{}
	err := a.db.View(func(tx *bolt.Tx) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		root := tx.Bucket([]byte(boltRootBucket))
		if root == nil {
			return nil
		}
		hookBucket := root.Bucket([]byte(hookID))
		if hookBucket == nil {
			return nil
		}

		return hookBucket.ForEach(func(_, v []byte) error {
			var d types.Delivery
			if err := json.Unmarshal(v, &d); err != nil {
				return err
			}
			result = append(result, d)
			return nil
		})
	})
	return result, err
}

// Close shuts down the Bolt DB.
func (a *BoltArchive) Close() error {
	a.once.Do(func() {
		_ = a.db.Close()
	})
	return nil
}

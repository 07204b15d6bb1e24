//go:build bolt

package store

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/inovacc/patientdesk/internal/model"
	"github.com/inovacc/patientdesk/internal/params"
	"go.etcd.io/bbolt"
)

const (
	boltBucketConfig = "config" // key: "config" -> Config JSON
	boltKeyConfig    = "config"
)

// Bolt keeps the settings as one JSON document in a bbolt bucket.
type Bolt struct {
	storage *bbolt.DB
}

func initDB() (Store, error) {
	path, err := params.DatabasePath(".bolt")
	if err != nil {
		return nil, err
	}

	return Open(path)
}

// Open opens the bbolt settings database at path.
func Open(path string) (Store, error) {
	b, err := NewBolt(path)
	if err != nil {
		return nil, err
	}

	return b, nil
}

// NewBolt creates a new Bolt database at the specified path.
func NewBolt(path string) (*Bolt, error) {
	instance, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketConfig))

		return err
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	return &Bolt{storage: instance}, nil
}

func (b *Bolt) Ping() error {
	if b.storage == nil {
		return errors.New("database not initialized")
	}

	return b.storage.View(func(*bbolt.Tx) error { return nil })
}

func (b *Bolt) Close() error {
	return b.storage.Close()
}

func (b *Bolt) GetConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	err := b.storage.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(boltBucketConfig)).Get([]byte(boltKeyConfig))
		if v == nil {
			return nil
		}

		return json.Unmarshal(v, &cfg)
	})
	if err != nil {
		return nil, err
	}

	cfg = cfg.WithDefaults()

	return &cfg, nil
}

func (b *Bolt) SaveConfig(cfg *model.Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	return b.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketConfig)).Put([]byte(boltKeyConfig), data)
	})
}

func (b *Bolt) ResetConfig() error {
	return b.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketConfig)).Delete([]byte(boltKeyConfig))
	})
}

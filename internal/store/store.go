package store

import (
	"sync"

	"github.com/inovacc/patientdesk/internal/model"
)

// Store persists the client settings.
type Store interface {
	Ping() error
	GetConfig() (*model.Config, error)
	SaveConfig(cfg *model.Config) error
	ResetConfig() error
	Close() error
}

var (
	once  sync.Once
	db    Store
	dbErr error
)

// GetDB returns the settings store in the application directory, opening
// it on first use.
func GetDB() (Store, error) {
	once.Do(lazyInit)

	return db, dbErr
}

func lazyInit() {
	instance, err := initDB()
	if err != nil {
		dbErr = err

		return
	}

	if err := instance.Ping(); err != nil {
		_ = instance.Close()
		dbErr = err

		return
	}

	db = instance
}

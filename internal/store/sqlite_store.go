//go:build !bolt

package store

import (
	"github.com/inovacc/patientdesk/internal/params"
	"github.com/inovacc/patientdesk/internal/store/sqlite"
)

func initDB() (Store, error) {
	path, err := params.DatabasePath(".db")
	if err != nil {
		return nil, err
	}

	return Open(path)
}

// Open opens the SQLite settings database at path.
func Open(path string) (Store, error) {
	s, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}

	return s, nil
}

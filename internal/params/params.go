// Package params resolves the on-disk locations used at runtime.
package params

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/inovacc/patientdesk/internal/application"
)

const (
	logFileName = "patientdesk.log"
	envFileName = ".env"
)

// AppdataDir returns the application directory, creating it if needed.
func AppdataDir() (string, error) {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	return dir, nil
}

// DatabasePath is the settings database file with the given extension.
func DatabasePath(ext string) (string, error) {
	dir, err := AppdataDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, application.AppName+ext), nil
}

// LogFile is where the interactive UI writes its log.
func LogFile() (string, error) {
	dir, err := AppdataDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, logFileName), nil
}

// EnvFiles lists the .env files to load, most specific first: the working
// directory, then the application directory. Missing files are skipped.
func EnvFiles() []string {
	var files []string

	if _, err := os.Stat(envFileName); err == nil {
		files = append(files, envFileName)
	}

	if dir, err := application.GetApplicationDirectory(); err == nil {
		p := filepath.Join(dir, envFileName)
		if _, err := os.Stat(p); err == nil {
			files = append(files, p)
		}
	}

	return files
}

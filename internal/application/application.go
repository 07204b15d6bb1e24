// Package application holds process-wide identity: the app name, its build
// version and where it keeps local state.
package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	AppName   = "patientdesk"
	EnvPrefix = "PATIENTDESK"

	// DirEnv, when set, replaces the per-user state directory.
	DirEnv = EnvPrefix + "_HOME"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var stateDir = sync.OnceValues(func() (string, error) {
	return resolveDir(os.Getenv(DirEnv), runtime.GOOS, os.UserConfigDir, os.UserCacheDir)
})

// GetApplicationDirectory returns the directory holding settings and logs.
// The result is computed once per process.
func GetApplicationDirectory() (string, error) {
	return stateDir()
}

// resolveDir picks the state directory. Windows keeps it under the local
// cache root so it stays out of the roaming profile.
func resolveDir(override, goos string, configRoot, cacheRoot func() (string, error)) (string, error) {
	if override != "" {
		return override, nil
	}

	root := configRoot
	if goos == "windows" {
		root = cacheRoot
	}

	base, err := root()
	if err != nil {
		return "", fmt.Errorf("locate user directory: %w", err)
	}

	return filepath.Join(base, AppName), nil
}

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// newLogger creates a slog.Logger writing text or JSON records to w.
func newLogger(w io.Writer, level string, jsonOutput bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	if jsonOutput {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}

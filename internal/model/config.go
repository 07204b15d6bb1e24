package model

import "time"

// PagingMode selects where filtering and page slicing happen.
type PagingMode string

const (
	// PagingClient fetches the whole set once and pages locally.
	PagingClient PagingMode = "client"

	// PagingServer asks the backend for one page per request.
	PagingServer PagingMode = "server"
)

// Valid reports whether m is a known paging mode.
func (m PagingMode) Valid() bool {
	return m == PagingClient || m == PagingServer
}

// Config holds the client settings persisted in the local store.
type Config struct {
	// BaseURL is the patient backend root, e.g. http://localhost:8080
	BaseURL string `json:"base_url"`

	// PagingMode is "client" or "server"
	PagingMode PagingMode `json:"paging_mode"`

	// PageSize is the number of rows per page
	PageSize int `json:"page_size"`

	// SortField is the attribute the backend sorts by (server mode)
	SortField string `json:"sort_field"`

	// SortDir is "asc" or "desc"
	SortDir string `json:"sort_dir"`

	// Timeout bounds each backend request
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns a Config matching the backend's own defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8080",
		PagingMode: PagingServer,
		PageSize:   10,
		SortField:  "id",
		SortDir:    "asc",
		Timeout:    30 * time.Second,
	}
}

// WithDefaults fills zero-valued settings from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()

	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}

	if !c.PagingMode.Valid() {
		c.PagingMode = def.PagingMode
	}

	if c.PageSize <= 0 {
		c.PageSize = def.PageSize
	}

	if c.SortField == "" {
		c.SortField = def.SortField
	}

	if c.SortDir != "asc" && c.SortDir != "desc" {
		c.SortDir = def.SortDir
	}

	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}

	return c
}

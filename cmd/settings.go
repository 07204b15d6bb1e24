package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inovacc/patientdesk/internal/api"
	"github.com/inovacc/patientdesk/internal/application"
	"github.com/inovacc/patientdesk/internal/cli"
	"github.com/inovacc/patientdesk/internal/core"
	"github.com/inovacc/patientdesk/internal/model"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys shared by flags, PATIENTDESK_* environment variables, and viper.
const (
	keyBaseURL  = "base-url"
	keyPaging   = "paging"
	keyPageSize = "page-size"
	keySort     = "sort"
	keyTimeout  = "timeout"
	keyLogLevel = "log-level"
	keyLogJSON  = "log-json"
)

// newViper layers flags over the environment over stored settings.
func newViper(flags *pflag.FlagSet, stored model.Config) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(application.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	stored = stored.WithDefaults()

	v.SetDefault(keyBaseURL, stored.BaseURL)
	v.SetDefault(keyPaging, string(stored.PagingMode))
	v.SetDefault(keyPageSize, strconv.Itoa(stored.PageSize))
	v.SetDefault(keySort, stored.SortField+","+stored.SortDir)
	v.SetDefault(keyTimeout, stored.Timeout.String())
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogJSON, false)

	for _, key := range []string{keyBaseURL, keyPaging, keyPageSize, keySort, keyTimeout, keyLogLevel, keyLogJSON} {
		if fl := flags.Lookup(key); fl != nil {
			if err := v.BindPFlag(key, fl); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", key, err)
			}
		}
	}

	return v, nil
}

func settingsFrom(v *viper.Viper) (*model.Config, error) {
	cfg, err := cli.ParseConfig(
		v.GetString(keyBaseURL),
		v.GetString(keyPaging),
		v.GetString(keyPageSize),
		v.GetString(keySort),
		v.GetString(keyTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}

func newClient() (*api.Client, error) {
	return api.NewClient(api.Options{
		BaseURL: settings.BaseURL,
		Timeout: settings.Timeout,
		Logger:  logger,
	})
}

func newCoordinator(backend core.Backend) *core.Coordinator {
	return core.NewCoordinator(backend, core.Options{
		Mode:     settings.PagingMode,
		PageSize: settings.PageSize,
		Sort:     currentSort(),
		Logger:   logger,
	})
}

func currentSort() core.Sort {
	return core.Sort{Field: settings.SortField, Desc: settings.SortDir == "desc"}
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/inovacc/patientdesk/internal/application"
	"github.com/inovacc/patientdesk/internal/model"
	"github.com/inovacc/patientdesk/internal/params"
	"github.com/inovacc/patientdesk/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// settings and logger are resolved once per invocation by the root
	// command's PersistentPreRunE.
	settings *model.Config
	logger   *slog.Logger
	logLevel string
	logJSON  bool

	openStore = store.GetDB
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "A patient contact manager",
	Long: `Patientdesk manages patient contact records kept by a REST backend.
Run it without arguments to browse, search, and edit patients interactively,
or use the subcommands for scripted access.`,
	Version:           application.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	def := model.DefaultConfig()
	f := rootCmd.PersistentFlags()

	f.String(keyBaseURL, def.BaseURL, "Patient backend base URL")
	f.String(keyPaging, string(def.PagingMode), "Paging mode: client or server")
	f.Int(keyPageSize, def.PageSize, "Rows per page")
	f.String(keySort, def.SortField+","+def.SortDir, "Sort as field,asc|desc")
	f.Duration(keyTimeout, def.Timeout, "Timeout of each backend request")
	f.String(keyLogLevel, "warn", "Log level: debug, info, warn, error")
	f.Bool(keyLogJSON, false, "Write logs as JSON")
}

// setup loads .env files, then resolves settings from flags, environment,
// and the settings store, in that order of precedence.
func setup(cmd *cobra.Command, _ []string) error {
	if files := params.EnvFiles(); len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return fmt.Errorf("loading env files: %w", err)
		}
	}

	stored, storeErr := storedConfig()

	v, err := newViper(cmd.Flags(), stored)
	if err != nil {
		return err
	}

	logLevel, logJSON = v.GetString(keyLogLevel), v.GetBool(keyLogJSON)

	logger, err = newLogger(cmd.ErrOrStderr(), logLevel, logJSON)
	if err != nil {
		return err
	}

	if storeErr != nil {
		logger.Warn("settings store unavailable, using defaults", "error", storeErr)
	}

	settings, err = settingsFrom(v)
	if err != nil {
		return err
	}

	logger.Debug("settings resolved",
		"base_url", settings.BaseURL,
		"paging", settings.PagingMode,
		"page_size", settings.PageSize,
	)

	return nil
}

func storedConfig() (model.Config, error) {
	db, err := openStore()
	if err != nil {
		return model.DefaultConfig(), err
	}

	cfg, err := db.GetConfig()
	if err != nil {
		return model.DefaultConfig(), err
	}

	return *cfg, nil
}

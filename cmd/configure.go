package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/patientdesk/internal/cli"
	"github.com/spf13/cobra"
)

var (
	showConfig  bool
	resetConfig bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure patientdesk settings",
	Long: `Interactively configure the backend URL, paging mode, page size, sort order,
and request timeout. Flags and PATIENTDESK_* environment variables still
override the saved values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return fmt.Errorf("opening settings store: %w", err)
		}

		out := cmd.OutOrStdout()

		if resetConfig {
			if err := db.ResetConfig(); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(out, "Configuration reset to defaults.")

			return nil
		}

		cfg, err := db.GetConfig()
		if err != nil {
			return err
		}

		printConfig(out, cfg)

		if showConfig {
			return nil
		}

		_, _ = fmt.Fprintln(out, "\nStarting interactive configuration...")

		m, err := cli.NewConfigureModel(db)
		if err != nil {
			return err
		}

		finalModel, err := tea.NewProgram(m).Run()
		if err != nil {
			return err
		}

		if configModel, ok := finalModel.(*cli.ConfigureModel); ok && configModel.Err != nil && !configModel.Saved {
			return configModel.Err
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.Flags().BoolVarP(&showConfig, "show", "s", false, "Show current configuration")
	configureCmd.Flags().BoolVarP(&resetConfig, "reset", "r", false, "Reset configuration to defaults")
}

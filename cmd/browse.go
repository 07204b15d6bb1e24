package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/patientdesk/internal/cli"
	"github.com/inovacc/patientdesk/internal/params"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse, search, and edit patients interactively",
	Long: `Open the interactive patient table. Search with /, page with the arrow
keys, edit a row in place with e, or open the record form with a and E.
When stdout is not a terminal the first page is printed instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return runList(cmd, "", 1)
	}

	// The UI owns the terminal, so logs go to a file.
	path, err := params.LogFile()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	logger, err = newLogger(f, logLevel, logJSON)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	m := cli.NewPatientsModel(ctx, newCoordinator(client))

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

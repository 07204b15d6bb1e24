package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/inovacc/patientdesk/internal/core"
	"github.com/inovacc/patientdesk/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportOut    string
	exportSearch string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export patients to an Excel workbook",
	Long: `Fetch every patient, keep those matching --search, sort them by the
configured sort, and write them to an .xlsx workbook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		all, err := client.ListAll(cmd.Context())
		if err != nil {
			return errors.New(core.UserMessage(err))
		}

		patients := core.FilterPatients(all, exportSearch)
		core.SortPatients(patients, currentSort())

		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOut, err)
		}

		if err := export.WriteXLSX(f, patients); err != nil {
			_ = f.Close()

			return err
		}

		if err := f.Close(); err != nil {
			return err
		}

		logger.Info("patients exported", "count", len(patients), "path", exportOut)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d patients to %s\n", len(patients), exportOut)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "patients.xlsx", "Output workbook path")
	exportCmd.Flags().StringVar(&exportSearch, "search", "", "Only export patients matching this term")
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/inovacc/patientdesk/internal/core"
	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a patient",
	Long:    `Delete a patient after confirmation. Use -y to skip the prompt.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if !deleteYes {
			p, err := client.Get(cmd.Context(), id)
			if err != nil {
				return errors.New(core.UserMessage(err))
			}

			if !promptConfirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete patient #%d (%s)? [y/N]: ", id, p.FullName())) {
				_, _ = fmt.Fprintln(out, "Cancelled.")

				return nil
			}
		}

		if err := client.Delete(cmd.Context(), id); err != nil {
			return errors.New(core.UserMessage(err))
		}

		logger.Info("patient deleted", "id", id)
		_, _ = fmt.Fprintf(out, "Patient #%d deleted\n", id)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip confirmation prompt")
}

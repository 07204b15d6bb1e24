package cmd

import (
	"errors"

	"github.com/inovacc/patientdesk/internal/core"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one patient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		p, err := client.Get(cmd.Context(), id)
		if err != nil {
			return errors.New(core.UserMessage(err))
		}

		printPatient(cmd.OutOrStdout(), p)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

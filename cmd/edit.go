package cmd

import (
	"errors"
	"fmt"

	"github.com/inovacc/patientdesk/internal/core"
	"github.com/spf13/cobra"
)

var (
	editFields []string
	editRules  string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a patient",
	Long: `Fetch a patient, apply the given field=value changes, validate the whole
record, and save it. Field names are the JSON attribute names.`,
	Example: `  patientdesk edit 12 --field city=Shelbyville --field zipCode=62565`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		changes, err := parseAssignments(editFields)
		if err != nil {
			return err
		}

		if len(changes) == 0 {
			return errors.New("nothing to change; pass at least one --field name=value")
		}

		rules, err := core.RulesByName(editRules)
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		current, err := client.Get(cmd.Context(), id)
		if err != nil {
			return errors.New(core.UserMessage(err))
		}

		e := core.NewEditor(rules)
		e.Load(&current)

		for f, v := range changes {
			e.SetField(f, v)
		}

		p, err := submit(cmd, e)
		if err != nil {
			return err
		}

		if _, err := client.Update(cmd.Context(), p); err != nil {
			return errors.New(core.UserMessage(err))
		}

		logger.Info("patient updated", "id", id)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Patient #%d updated\n", id)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringArrayVar(&editFields, "field", nil, "Change as name=value (repeatable)")
	editCmd.Flags().StringVar(&editRules, "rules", core.LenientRules.Name, "Validation rules: lenient or strict")
}

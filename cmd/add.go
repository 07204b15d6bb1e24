package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inovacc/patientdesk/internal/core"
	"github.com/inovacc/patientdesk/internal/model"
	"github.com/spf13/cobra"
)

var (
	addValues = make(map[model.Field]*string, len(model.Fields))
	addRules  string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a patient",
	Long: `Create a patient from the field flags. The record is validated locally
before anything is sent; invalid fields are listed and nothing is created.`,
	Example: `  patientdesk add --first-name Ada --last-name Lovelace --address "1 Main St" \
    --city Springfield --state IL --zip-code 62701 --email ada@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := core.RulesByName(addRules)
		if err != nil {
			return err
		}

		e := core.NewEditor(rules)
		for _, f := range model.Fields {
			e.SetField(f, *addValues[f])
		}

		p, err := submit(cmd, e)
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		created, err := client.Create(cmd.Context(), p)
		if err != nil {
			return errors.New(core.UserMessage(err))
		}

		logger.Info("patient created", "id", created.ID)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Patient #%d created\n", created.ID)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	for _, f := range model.Fields {
		addValues[f] = addCmd.Flags().String(flagName(f), "", f.Label())
	}

	addCmd.Flags().StringVar(&addRules, "rules", core.LenientRules.Name, "Validation rules: lenient or strict")
}

// flagName turns a field such as zipCode into zip-code.
func flagName(f model.Field) string {
	var b strings.Builder

	for _, r := range string(f) {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}

		b.WriteRune(r)
	}

	return b.String()
}

// submit validates the editor and prints the failing fields.
func submit(cmd *cobra.Command, e *core.Editor) (model.Patient, error) {
	p, err := e.Submit()

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		printFieldErrors(cmd.ErrOrStderr(), verr.Fields)

		return model.Patient{}, errors.New(core.UserMessage(err))
	}

	return p, err
}

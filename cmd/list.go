package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/inovacc/patientdesk/internal/core"
	"github.com/inovacc/patientdesk/internal/export"
	"github.com/inovacc/patientdesk/internal/model"
	"github.com/spf13/cobra"
)

var (
	listSearch string
	listPage   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of patients",
	Long: `Print a page of patients as a table. --search keeps only patients with a
field containing the term, ignoring case; --page selects the page, starting at 1.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, listSearch, listPage)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listSearch, "search", "", "Only show patients matching this term")
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number, starting at 1")
}

func runList(cmd *cobra.Command, search string, page int) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	coord := newCoordinator(client)
	if err := loadListing(cmd.Context(), coord, search, page); err != nil {
		return errors.New(core.UserMessage(err))
	}

	list := coord.List()
	out := cmd.OutOrStdout()

	rows := list.Visible()
	if len(rows) == 0 {
		printEmptyResult(out, list.FilterTerm())

		return nil
	}

	_, _ = fmt.Fprintln(out, renderPatients(rows))
	printPageFooter(out, list)

	return nil
}

// loadListing fetches the requested page. page counts from 1 and is clamped.
func loadListing(ctx context.Context, coord *core.Coordinator, search string, page int) error {
	list := coord.List()

	if search != "" && list.Mode() == model.PagingServer {
		if err := coord.Dispatch(ctx, core.SetFilter{Term: search}); err != nil {
			return err
		}
	} else {
		if err := coord.Mount(ctx); err != nil {
			return err
		}

		if search != "" {
			if err := coord.Dispatch(ctx, core.SetFilter{Term: search}); err != nil {
				return err
			}
		}
	}

	if page > 1 {
		return coord.Dispatch(ctx, core.GoToPage{Index: page - 1})
	}

	return nil
}

var (
	headerCellStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	borderStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderPatients(patients []model.Patient) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(export.Headers()...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}

			return cellStyle
		})

	for _, p := range patients {
		t.Row(p.Values()...)
	}

	return t.Render()
}

func printPageFooter(w io.Writer, list *core.ListController) {
	footer := fmt.Sprintf("Page %d of %d", list.PageIndex()+1, max(list.PageCount(), 1))

	if list.Mode() == model.PagingClient {
		footer += fmt.Sprintf(" (%d patients)", list.FilteredCount())
	}

	if term := list.FilterTerm(); term != "" {
		footer += fmt.Sprintf(", search %q", term)
	}

	_, _ = fmt.Fprintln(w, footer)
}

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inovacc/patientdesk/internal/core"
	"github.com/inovacc/patientdesk/internal/model"
)

// promptConfirm asks the user for confirmation and returns true if they confirm
// prompt should include the question (e.g., "Delete this patient? [y/N]: ")
func promptConfirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)

	line, _ := bufio.NewReader(in).ReadString('\n')
	response := strings.TrimSpace(line)

	return response == "y" || response == "Y"
}

// parseID parses a positive patient id argument
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid patient id %q", s)
	}

	return id, nil
}

// parseAssignments turns "field=value" pairs into field changes
func parseAssignments(pairs []string) (map[model.Field]string, error) {
	out := make(map[model.Field]string, len(pairs))

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("expected field=value, got %q", pair)
		}

		f, ok := model.ParseField(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown field %q", name)
		}

		out[f] = value
	}

	return out, nil
}

// printFieldErrors lists validation messages in field order
func printFieldErrors(w io.Writer, errs core.FieldErrors) {
	for _, f := range model.Fields {
		if msg := errs[f]; msg != "" {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", f.Label(), msg)
		}
	}
}

// printEmptyResult prints a "no results" message with a create hint
func printEmptyResult(w io.Writer, term string) {
	if term != "" {
		_, _ = fmt.Fprintf(w, "No patients match %q.\n", term)

		return
	}

	_, _ = fmt.Fprintln(w, "No patients found.")
	_, _ = fmt.Fprintln(w, "Create one with: patientdesk add")
}

// centerString centers a string in a field of given width
func centerString(s string, width int) string {
	if len(s) >= width {
		return s
	}

	padding := (width - len(s)) / 2

	return fmt.Sprintf("%*s%s%*s", padding, "", s, width-len(s)-padding, "")
}

// truncateString truncates a string to the specified length with ellipsis
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}

// boxWidth is the standard width for info boxes
const boxWidth = 64

func printBoxHeader(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w, "╔"+strings.Repeat("═", boxWidth-2)+"╗")
	_, _ = fmt.Fprintf(w, "║%s║\n", centerString(title, boxWidth-2))
	_, _ = fmt.Fprintln(w, "╠"+strings.Repeat("═", boxWidth-2)+"╣")
}

// printBoxLine prints a line inside an info box with label and value
func printBoxLine(w io.Writer, label, value string) {
	content := truncateString(fmt.Sprintf("  %-12s %s", label+":", value), boxWidth-2)
	padding := boxWidth - 2 - len(content)

	_, _ = fmt.Fprintf(w, "║%s%*s║\n", content, padding, "")
}

func printBoxFooter(w io.Writer) {
	_, _ = fmt.Fprintln(w, "╚"+strings.Repeat("═", boxWidth-2)+"╝")
}

// printPatient prints one record as an info box
func printPatient(w io.Writer, p model.Patient) {
	printBoxHeader(w, fmt.Sprintf("Patient #%d", p.ID))

	for _, f := range model.Fields {
		printBoxLine(w, f.Label(), p.Get(f))
	}

	printBoxFooter(w)
}

// printConfig prints the effective settings as an info box
func printConfig(w io.Writer, cfg *model.Config) {
	printBoxHeader(w, "patientdesk configuration")
	printBoxLine(w, "Backend", cfg.BaseURL)
	printBoxLine(w, "Paging", string(cfg.PagingMode))
	printBoxLine(w, "Page size", strconv.Itoa(cfg.PageSize))
	printBoxLine(w, "Sort", cfg.SortField+","+cfg.SortDir)
	printBoxLine(w, "Timeout", cfg.Timeout.String())
	printBoxFooter(w)
}

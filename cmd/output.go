package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordspark/internal/syncledger"
	"github.com/abhisek/wordspark/internal/ui/theme"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	dimStyle     = lipgloss.NewStyle().Foreground(theme.TextDim)
	okStyle      = lipgloss.NewStyle().Foreground(theme.Success)
	warnStyle    = lipgloss.NewStyle().Foreground(theme.Accent)
	errStyle     = lipgloss.NewStyle().Foreground(theme.Error)
)

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, headingStyle.Render(title))
}

func newTable(w io.Writer, columns ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func syncLabel(m syncledger.Meta) string {
	s := string(m.Status)
	switch m.Status {
	case syncledger.StatusSynced:
		return okStyle.Render(s)
	case syncledger.StatusPending:
		return warnStyle.Render(s)
	case syncledger.StatusConflict:
		return errStyle.Render(s)
	}
	return dimStyle.Render(s)
}

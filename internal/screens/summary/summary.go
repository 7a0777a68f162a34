package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordspark/internal/router"
	"github.com/abhisek/wordspark/internal/screen"
	"github.com/abhisek/wordspark/internal/stats"
	"github.com/abhisek/wordspark/internal/ui/components"
	"github.com/abhisek/wordspark/internal/ui/layout"
	"github.com/abhisek/wordspark/internal/ui/theme"
)

// SummaryScreen displays a finished session.
type SummaryScreen struct {
	record *stats.Record
	names  func(itemID string) string
	menu   components.Menu
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. again builds a fresh practice screen; nil
// hides the "Play again" entry.
func New(record *stats.Record, names func(itemID string) string, again func() screen.Screen) *SummaryScreen {
	if names == nil {
		names = func(id string) string { return id }
	}
	items := []components.MenuItem{
		{Label: "Play again", Disabled: again == nil, Action: func() tea.Cmd {
			next := again()
			return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	}
	return &SummaryScreen{record: record, names: names, menu: components.NewMenu(items)}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "esc" {
		return s, tea.Quit
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SummaryScreen) View(width, height int) string {
	rec := s.record
	if rec == nil {
		return ""
	}

	var b strings.Builder

	headline := "Session complete!"
	if rec.TotalAttempts > 0 && rec.Accuracy >= 80 {
		headline = "Amazing work!"
	}
	b.WriteString(theme.Title.Width(width).Render(headline))
	b.WriteString("\n\n")

	mins := int(rec.Duration.Minutes())
	secs := int(rec.Duration.Seconds()) % 60
	b.WriteString(theme.Subtitle.Width(width).Render(fmt.Sprintf("Duration: %d:%02d", mins, secs)))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Attempts: %d        Correct: %d        Accuracy: %d%%",
		rec.TotalAttempts, rec.CorrectAnswers, rec.Accuracy)
	b.WriteString(theme.Body.Width(width).Align(lipgloss.Center).Render(statsLine))
	b.WriteString("\n\n")

	barWidth := min(width-8, 50)
	b.WriteString(layout.Center(components.AccuracyBar("", rec.Accuracy, barWidth).View(), width))
	b.WriteString("\n\n")

	if len(rec.Items) > 0 {
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", barWidth))
		b.WriteString(layout.Center(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Words"), width))
		b.WriteString("\n")
		b.WriteString(layout.Center(divider, width))
		b.WriteString("\n\n")

		for _, r := range rec.Items {
			style := theme.Correct
			if r.Correct < r.Attempts {
				style = theme.Body
			}
			line := fmt.Sprintf("%-12s %d/%d", s.names(r.ItemID), r.Correct, r.Attempts)
			b.WriteString(layout.Center(style.Render(line), width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(layout.Center(s.menu.View(), width))
	return b.String()
}

package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordspark/internal/session"
	"github.com/abhisek/wordspark/internal/ui/layout"
	"github.com/abhisek/wordspark/internal/ui/theme"
)

func (s *PracticeScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderMessage(width, height, theme.Incorrect.Render("Can't start practice"), s.errMsg)
	case !s.started:
		return renderMessage(width, height, theme.Subtitle.Render("Getting words ready..."), "")
	case s.quitConfirm:
		return renderMessage(width, height, theme.Title.Render("End this session?"), "Your progress so far will be saved.")
	case s.state.Phase == session.PhaseEnded:
		return renderMessage(width, height, theme.Title.Render("That's all the words for now!"),
			fmt.Sprintf("You got %d of %d right.", s.state.Correct, s.state.Total))
	}

	if s.deps.Machine.Config().Mode.SingleTarget() {
		return s.renderSingle(width, height)
	}
	return s.renderBoard(width, height)
}

func (s *PracticeScreen) renderBoard(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Width(width).Render(fmt.Sprintf("Round %d", s.state.RoundNumber)))
	b.WriteString("\n\n")
	b.WriteString(theme.Title.Width(width).Render(session.Prompt(s.state.Mode, "")))
	b.WriteString("\n\n")

	board := s.board
	board.Held = s.held
	b.WriteString(board.View(width))
	b.WriteString("\n\n")
	b.WriteString(s.renderFeedback(width))

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}

func (s *PracticeScreen) renderSingle(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Width(width).Render(fmt.Sprintf("Round %d", s.state.RoundNumber)))
	b.WriteString("\n\n")

	if s.state.Target != "" {
		pic := theme.Picture.Width(24).Height(3).Render(s.caption(s.state.Target))
		b.WriteString(layout.Center(pic, width))
		b.WriteString("\n\n")
		b.WriteString(theme.Title.Width(width).Render(session.Prompt(s.state.Mode, s.name(s.state.Target))))
		b.WriteString("\n\n")
	}

	b.WriteString(layout.Center(s.input.View(), width))
	b.WriteString("\n\n")
	b.WriteString(s.renderFeedback(width))

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}

func (s *PracticeScreen) renderFeedback(width int) string {
	if s.state.Phase == session.PhaseTransitioning && s.feedback == "" {
		return theme.Hint.Width(width).Align(lipgloss.Center).Render("Next round...")
	}
	if s.feedback == "" {
		return ""
	}
	style := theme.Incorrect
	if s.lastCorrect {
		style = theme.Correct
	}
	return layout.Center(style.Render(s.feedback), width)
}

func renderMessage(width, height int, title, body string) string {
	content := layout.Center(title, width)
	if body != "" {
		content += "\n\n" + theme.Body.Width(width).Align(lipgloss.Center).Render(body)
	}
	return lipgloss.PlaceVertical(height, lipgloss.Center, content)
}

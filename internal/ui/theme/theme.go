package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette: warm and high-contrast, readable from across a table
var (
	Primary   = lipgloss.Color("#2563EB") // Royal Blue
	Secondary = lipgloss.Color("#10B981") // Emerald
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#EF4444") // Red
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Tiles
var (
	// Picture is an unanswered picture slot.
	Picture = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Foreground(Text).
		Align(lipgloss.Center, lipgloss.Center).
		Padding(0, 1)

	// PictureDone is a picture whose word has been matched.
	PictureDone = Picture.
			BorderForeground(Success).
			Foreground(Success)

	// Word is a word tile waiting to be placed.
	Word = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Foreground(Text).
		Padding(0, 2)

	// WordSelected is the tile the learner is holding.
	WordSelected = Word.
			BorderForeground(Accent).
			Foreground(Accent).
			Bold(true)

	// WordMatched is a tile already placed.
	WordMatched = Word.
			BorderForeground(BgCard).
			Foreground(TextDim).
			Strikethrough(true)
)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

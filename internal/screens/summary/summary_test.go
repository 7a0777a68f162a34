package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordspark/internal/router"
	"github.com/abhisek/wordspark/internal/screen"
	"github.com/abhisek/wordspark/internal/stats"
)

func testRecord() *stats.Record {
	return &stats.Record{
		ID:             "1718000000000",
		Mode:           "picture-word",
		TotalAttempts:  8,
		CorrectAnswers: 6,
		Accuracy:       75,
		Duration:       3*time.Minute + 5*time.Second,
		Items: []stats.ItemResult{
			{ItemID: "seed-apple", Attempts: 3, Correct: 3},
			{ItemID: "seed-cat", Attempts: 5, Correct: 3},
		},
	}
}

func names(id string) string {
	return strings.TrimPrefix(id, "seed-")
}

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "" }
func (s *stubScreen) Title() string                           { return "stub" }

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testRecord(), names, nil)
	if s.Title() != "Session Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Session Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testRecord(), names, nil)
	view := s.View(80, 24)
	for _, want := range []string{"Accuracy: 75%", "Duration: 3:05", "apple", "cat"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_PlayAgain(t *testing.T) {
	next := &stubScreen{}
	s := New(testRecord(), names, func() screen.Screen { return next })

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok || msg.Screen != next {
		t.Errorf("Enter produced %T, want ReplaceScreenMsg with the new screen", cmd())
	}
}

func TestSummaryScreen_PlayAgainDisabled(t *testing.T) {
	s := New(testRecord(), names, nil)
	if s.menu.Selected != 1 {
		t.Errorf("selected = %d, want Quit when play again is unavailable", s.menu.Selected)
	}
}

func TestSummaryScreen_Esc(t *testing.T) {
	s := New(testRecord(), names, nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Error("expected a quit command on Esc")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testRecord(), names, nil)
	if len(s.KeyHints()) != 3 {
		t.Errorf("KeyHints length = %d, want 3", len(s.KeyHints()))
	}
}

package practice

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordspark/internal/catalog"
	"github.com/abhisek/wordspark/internal/router"
	"github.com/abhisek/wordspark/internal/screen"
	"github.com/abhisek/wordspark/internal/session"
	"github.com/abhisek/wordspark/internal/stats"
)

// heldScheduler never fires; transitions stay pending.
type heldScheduler struct{}

type heldTimer struct{}

func (heldTimer) Stop() bool { return true }

func (heldScheduler) AfterFunc(time.Duration, func()) session.Timer { return heldTimer{} }

type stubScreen struct{ rec *stats.Record }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "summary" }
func (s *stubScreen) Title() string                           { return "Summary" }

type fixture struct {
	screen  *PracticeScreen
	machine *session.Machine
	items   *catalog.ItemCatalog
	cols    *catalog.CollectionCatalog
	history *stats.Aggregator
	summary *stubScreen
}

func newFixture(t *testing.T, mode session.Mode, activate bool) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	items, err := catalog.NewItemCatalog(ctx, nil, nil, nil, catalog.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	cols, err := catalog.NewCollectionCatalog(ctx, nil, nil, nil, items, catalog.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	if activate {
		cols.ToggleActive(catalog.DefaultCollectionID)
	}
	history, err := stats.New(ctx, nil, nil, stats.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}

	cfg := session.DefaultConfig()
	cfg.Mode = mode
	m := session.New(cfg, items, catalog.Pool{Items: items, Collections: cols}, history,
		session.WithScheduler(heldScheduler{}),
		session.WithLogger(logger),
	)

	f := &fixture{machine: m, items: items, cols: cols, history: history}
	f.screen = New(Deps{
		Machine:     m,
		Items:       items,
		Collections: []string{catalog.DefaultCollectionID},
		Logger:      logger,
		Summary: func(rec *stats.Record) screen.Screen {
			f.summary = &stubScreen{rec: rec}
			return f.summary
		},
	})
	return f
}

// start runs the start command and feeds every queued event.
func (f *fixture) start() {
	f.screen.Update(f.screen.start()())
	f.drain()
}

func (f *fixture) drain() {
	for {
		select {
		case ev := <-f.screen.events:
			f.screen.Update(machineEventMsg{Event: ev})
		default:
			return
		}
	}
}

func (f *fixture) press(key string) tea.Cmd {
	var msg tea.KeyPressMsg
	switch key {
	case "enter":
		msg = tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		msg = tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		msg = tea.KeyPressMsg{Code: tea.KeyTab}
	default:
		r := []rune(key)[0]
		msg = tea.KeyPressMsg{Code: r, Text: key}
	}
	_, cmd := f.screen.Update(msg)
	f.drain()
	return cmd
}

// slotFor returns the picture key showing itemID.
func (f *fixture) slotFor(t *testing.T, itemID string) string {
	t.Helper()
	for _, p := range f.screen.board.Pictures {
		if p.ItemID == itemID {
			return p.Key
		}
	}
	t.Fatalf("no picture for %s", itemID)
	return ""
}

func TestPractice_NoCollections(t *testing.T) {
	f := newFixture(t, session.ModePictureWord, true)
	f.screen.deps.Collections = nil
	f.start()

	if !strings.Contains(f.screen.errMsg, "No collections are active") {
		t.Fatalf("errMsg = %q", f.screen.errMsg)
	}
}

func TestPractice_InactiveCollection(t *testing.T) {
	f := newFixture(t, session.ModePictureWord, false)
	f.start()

	if !strings.Contains(f.screen.errMsg, "Not enough words") {
		t.Fatalf("errMsg = %q", f.screen.errMsg)
	}
	if f.machine.Phase() != session.PhaseIdle {
		t.Errorf("phase = %v, want idle", f.machine.Phase())
	}
	if cmd := f.press("x"); cmd == nil {
		t.Error("expected quit command after the error")
	}
}

func TestPractice_MatchRound(t *testing.T) {
	f := newFixture(t, session.ModePictureWord, true)
	f.start()

	if f.screen.state.Phase != session.PhaseActive || len(f.screen.board.Choices) != 3 {
		t.Fatalf("state = %+v", f.screen.state)
	}

	for i, c := range f.screen.board.Choices {
		f.press(string(rune('1' + i)))
		if f.screen.held != c.ID {
			t.Fatalf("held = %q, want %q", f.screen.held, c.ID)
		}
		f.press(f.slotFor(t, c.ItemID))
	}

	if f.screen.state.Phase != session.PhaseTransitioning {
		t.Errorf("phase = %v, want transitioning", f.screen.state.Phase)
	}
	if sc := f.screen.Score(); sc == nil || sc.Correct != 3 || sc.Total != 3 {
		t.Errorf("score = %+v, want 3/3", sc)
	}
	if f.screen.feedback != "Great job!" {
		t.Errorf("feedback = %q", f.screen.feedback)
	}
}

func TestPractice_WrongPlacement(t *testing.T) {
	f := newFixture(t, session.ModePictureWord, true)
	f.start()

	c := f.screen.board.Choices[0]
	var other string
	for _, p := range f.screen.board.Pictures {
		if p.ItemID != c.ItemID {
			other = p.Key
			break
		}
	}
	f.press("1")
	f.press(other)

	if f.screen.lastCorrect || !strings.HasPrefix(f.screen.feedback, "Not quite") {
		t.Errorf("feedback = %q", f.screen.feedback)
	}
	if f.screen.state.Total != 1 || f.screen.state.Correct != 0 {
		t.Errorf("score = %d/%d, want 0/1", f.screen.state.Correct, f.screen.state.Total)
	}
	it, _ := f.items.Get(c.ItemID)
	if it.Performance.Attempts != 1 || it.Performance.CorrectAttempts != 0 {
		t.Errorf("item performance = %+v", it.Performance)
	}
}

func TestPractice_PictureKeyWithoutWordIgnored(t *testing.T) {
	f := newFixture(t, session.ModePictureWord, true)
	f.start()
	f.press("a")
	if f.screen.state.Total != 0 {
		t.Error("placing without a held word recorded an attempt")
	}
}

func TestPractice_Skip(t *testing.T) {
	f := newFixture(t, session.ModePictureWord, true)
	f.start()
	f.press("tab")
	if f.screen.state.Phase != session.PhaseTransitioning {
		t.Errorf("phase = %v, want transitioning", f.screen.state.Phase)
	}
}

func TestPractice_EndShowsSummary(t *testing.T) {
	f := newFixture(t, session.ModePictureWord, true)
	f.start()
	c := f.screen.board.Choices[0]
	f.press("1")
	f.press(f.slotFor(t, c.ItemID))

	f.press("esc")
	if !f.screen.quitConfirm {
		t.Fatal("esc did not ask for confirmation")
	}
	cmd := f.press("y")
	if cmd == nil {
		t.Fatal("expected a command after confirming")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("cmd produced %T, want ReplaceScreenMsg", cmd())
	}
	if msg.Screen != f.summary || f.summary.rec == nil {
		t.Fatal("summary screen not built from the record")
	}
	if f.summary.rec.CorrectAnswers != 1 || f.summary.rec.TotalAttempts != 1 {
		t.Errorf("record = %+v", f.summary.rec)
	}
	if len(f.history.History()) != 1 {
		t.Errorf("history = %d records, want 1", len(f.history.History()))
	}
	if f.machine.Phase() != session.PhaseIdle {
		t.Errorf("phase = %v, want idle", f.machine.Phase())
	}
}

func TestPractice_QuitConfirmCancelled(t *testing.T) {
	f := newFixture(t, session.ModePictureWord, true)
	f.start()
	f.press("esc")
	f.press("n")
	if f.screen.quitConfirm {
		t.Error("confirmation still showing after N")
	}
	if f.machine.Phase() != session.PhaseActive {
		t.Errorf("phase = %v, want active", f.machine.Phase())
	}
}

func TestPractice_LetterSearch(t *testing.T) {
	f := newFixture(t, session.ModeLetterSearch, true)
	f.start()

	target := f.screen.state.Target
	if target == "" {
		t.Fatal("no target drawn")
	}
	it, _ := f.items.Get(target)
	f.screen.input.Model.SetValue("the letter " + strings.ToLower(it.Name[:1]))
	f.press("enter")

	if f.screen.state.Correct != 1 || f.screen.state.Total != 1 {
		t.Errorf("score = %d/%d, want 1/1", f.screen.state.Correct, f.screen.state.Total)
	}
	if f.screen.state.RoundNumber != 2 {
		t.Errorf("round = %d, want 2", f.screen.state.RoundNumber)
	}
	if f.screen.input.Value() != "" {
		t.Error("input not cleared after answering")
	}
}

func TestPractice_LetterSearchWrong(t *testing.T) {
	f := newFixture(t, session.ModeLetterSearch, true)
	f.start()
	f.screen.input.Model.SetValue("zzz")
	f.press("enter")
	if f.screen.state.Correct != 0 || f.screen.state.Total != 1 {
		t.Errorf("score = %d/%d, want 0/1", f.screen.state.Correct, f.screen.state.Total)
	}
}

func TestPractice_View(t *testing.T) {
	f := newFixture(t, session.ModePictureWord, true)
	if v := f.screen.View(80, 24); v == "" {
		t.Error("empty view before start")
	}
	f.start()
	if v := f.screen.View(80, 24); !strings.Contains(v, "Round 1") {
		t.Error("view does not show the round number")
	}
	if len(f.screen.KeyHints()) == 0 {
		t.Error("no key hints")
	}
}

func TestPractice_DisposeStopsEvents(t *testing.T) {
	f := newFixture(t, session.ModePictureWord, true)
	f.start()

	f.screen.Dispose()
	f.machine.Skip()

	select {
	case ev := <-f.screen.events:
		t.Errorf("received %v after Dispose", ev.Kind)
	default:
	}
}

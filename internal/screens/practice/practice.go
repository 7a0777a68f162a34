// Package practice is the terminal screen that drives a session.Machine.
package practice

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordspark/internal/router"
	"github.com/abhisek/wordspark/internal/screen"
	"github.com/abhisek/wordspark/internal/session"
	"github.com/abhisek/wordspark/internal/speech"
	"github.com/abhisek/wordspark/internal/stats"
	"github.com/abhisek/wordspark/internal/ui/components"
	"github.com/abhisek/wordspark/internal/ui/layout"
)

// Deps are the collaborators the screen needs.
type Deps struct {
	Machine     *session.Machine
	Items       session.ItemStore
	Speaker     speech.Speaker
	Judge       speech.Judge
	Collections []string
	Logger      *slog.Logger

	// Summary builds the screen shown after the session ends.
	Summary func(rec *stats.Record) screen.Screen
}

// PracticeScreen implements screen.Screen for a running session.
type PracticeScreen struct {
	deps        Deps
	events      chan session.Event
	unsubscribe func()

	state       session.State
	board       components.Board
	held        string
	input       components.TextInput
	feedback    string
	lastCorrect bool
	errMsg      string
	quitConfirm bool
	started     bool
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.ScoreProvider = (*PracticeScreen)(nil)
var _ screen.Disposer = (*PracticeScreen)(nil)

// New creates a PracticeScreen and subscribes it to the machine.
func New(deps Deps) *PracticeScreen {
	if deps.Speaker == nil {
		deps.Speaker = speech.Silent{}
	}
	if deps.Judge == nil {
		deps.Judge = speech.TextJudge{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &PracticeScreen{
		deps:   deps,
		events: make(chan session.Event, 64),
		input:  components.NewTextInput("Type your answer...", 32),
	}
	s.unsubscribe = deps.Machine.Subscribe(func(ev session.Event) {
		select {
		case s.events <- ev:
		default:
			deps.Logger.Warn("dropped session event", "kind", ev.Kind)
		}
	})
	return s
}

func (s *PracticeScreen) Init() tea.Cmd {
	return tea.Batch(s.start(), s.waitForEvent(), s.input.Init())
}

func (s *PracticeScreen) Title() string {
	return modeTitle(s.deps.Machine.Config().Mode)
}

func (s *PracticeScreen) Score() *layout.Score {
	if !s.started {
		return nil
	}
	return &layout.Score{Correct: s.state.Correct, Total: s.state.Total}
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Close"}}
	case s.quitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.state.Phase == session.PhaseEnded:
		return []layout.KeyHint{{Key: "Enter", Description: "See results"}}
	case s.deps.Machine.Config().Mode.SingleTarget():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Answer"},
			{Key: "Tab", Description: "Skip"},
			{Key: "Esc", Description: "End"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-9", Description: "Pick word"},
		{Key: "a-f", Description: "Place on picture"},
		{Key: "Tab", Description: "Skip"},
		{Key: "Esc", Description: "End"},
	}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)

	case machineEventMsg:
		return s.handleEvent(msg.Event)

	case announceDoneMsg:
		if msg.Err != nil {
			s.deps.Logger.Warn("announcement failed", "error", msg.Err)
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.acceptsTyping() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PracticeScreen) start() tea.Cmd {
	m := s.deps.Machine
	ids := s.deps.Collections
	return func() tea.Msg {
		ok := m.Start(ids)
		if !ok {
			err := m.Err()
			m.ClearErr()
			return startedMsg{Err: err}
		}
		return startedMsg{OK: true}
	}
}

// waitForEvent blocks until the machine emits the next event.
func (s *PracticeScreen) waitForEvent() tea.Cmd {
	ch := s.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return machineEventMsg{Event: ev}
	}
}

func (s *PracticeScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if !msg.OK {
		s.errMsg = startErrorMessage(msg.Err)
		s.deps.Logger.Info("session did not start", "error", msg.Err)
		return s, nil
	}
	s.started = true
	return s, nil
}

func (s *PracticeScreen) handleEvent(ev session.Event) (screen.Screen, tea.Cmd) {
	s.state = ev.State
	s.board = components.NewBoard(s.state.Round, s.state.Choices, s.caption)
	if ev.Kind == session.EventRoundReady {
		s.held = ""
		s.feedback = ""
		s.input.Reset()
	}

	cmds := []tea.Cmd{s.waitForEvent()}
	if ev.Announce != nil {
		cmds = append(cmds, s.announce(*ev.Announce))
	}
	return s, tea.Batch(cmds...)
}

func (s *PracticeScreen) announce(a session.Announcement) tea.Cmd {
	speaker := s.deps.Speaker
	return func() tea.Msg {
		return announceDoneMsg{Err: speech.SpeakAll(context.Background(), speaker, a.Texts, a.VoiceID)}
	}
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, s.leave()
	}

	if s.quitConfirm {
		switch strings.ToLower(key) {
		case "y":
			return s, s.finish()
		case "n", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	if s.state.Phase == session.PhaseEnded {
		if key == "enter" {
			return s, s.finish()
		}
		return s, nil
	}

	switch key {
	case "esc":
		if !s.started {
			return s, s.leave()
		}
		s.quitConfirm = true
		return s, nil
	case "tab":
		if s.deps.Machine.Skip() {
			s.feedback = "Skipped"
			s.lastCorrect = false
		}
		return s, nil
	}

	if s.deps.Machine.Config().Mode.SingleTarget() {
		return s.handleTypedKey(msg)
	}
	return s.handleBoardKey(key)
}

func (s *PracticeScreen) handleBoardKey(key string) (screen.Screen, tea.Cmd) {
	if s.state.Phase != session.PhaseActive {
		return s, nil
	}
	if c, ok := s.board.ChoiceForKey(key); ok {
		if !c.Matched {
			s.held = c.ID
		}
		return s, nil
	}
	if p, ok := s.board.PictureForKey(key); ok && s.held != "" {
		a, accepted := s.deps.Machine.RecordMatch(s.held, p.ItemID)
		s.held = ""
		if accepted {
			s.showAttempt(a)
		}
	}
	return s, nil
}

func (s *PracticeScreen) handleTypedKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() != "enter" {
		if !s.acceptsTyping() {
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	answer := strings.TrimSpace(s.input.Value())
	if answer == "" || s.state.Phase != session.PhaseActive {
		return s, nil
	}
	cfg := s.deps.Machine.Config()
	want := session.ExpectedAnswer(cfg.Mode, s.name(s.state.Target))
	correct := s.deps.Judge.Judge(want, answer)

	a, ok := s.deps.Machine.RecordJudged(correct)
	if ok {
		s.input.Submit(correct)
		s.showAttempt(a)
	}
	return s, nil
}

func (s *PracticeScreen) showAttempt(a session.Attempt) {
	s.lastCorrect = a.Correct
	switch {
	case a.Correct && a.RoundComplete:
		s.feedback = "Great job!"
	case a.Correct:
		s.feedback = "Correct!"
	default:
		s.feedback = "Not quite, try again"
	}
}

func (s *PracticeScreen) acceptsTyping() bool {
	return s.started &&
		s.deps.Machine.Config().Mode.SingleTarget() &&
		s.state.Phase == session.PhaseActive &&
		!s.quitConfirm
}

// finish ends the session and swaps in the summary screen.
func (s *PracticeScreen) finish() tea.Cmd {
	rec, _ := s.deps.Machine.End()
	s.unsubscribe()
	if s.deps.Summary == nil || rec == nil {
		return tea.Quit
	}
	next := s.deps.Summary(rec)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// Dispose stops listening to the machine.
func (s *PracticeScreen) Dispose() {
	s.unsubscribe()
}

func (s *PracticeScreen) leave() tea.Cmd {
	s.unsubscribe()
	return tea.Quit
}

func (s *PracticeScreen) name(itemID string) string {
	if it, ok := s.deps.Items.Get(itemID); ok {
		return it.Name
	}
	return itemID
}

// caption stands in for the picture of an item.
func (s *PracticeScreen) caption(itemID string) string {
	it, ok := s.deps.Items.Get(itemID)
	if !ok {
		return "?"
	}
	if s.deps.Machine.Config().Mode == session.ModeRecognition && it.Pronunciation != "" {
		return "♪ " + it.Pronunciation
	}
	if ref, found := strings.CutPrefix(it.ImageRef, "asset:"); found {
		return "[" + ref + "]"
	}
	if it.ImageRef != "" {
		return it.ImageRef
	}
	return "[" + it.Name + "]"
}

func startErrorMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrNoCollectionsAssigned):
		return "No collections are active.\n\nTurn one on with: wordspark collections toggle <id>"
	case errors.Is(err, session.ErrInsufficientPool):
		return "Not enough words to practice.\n\nActive collections need at least 3 active items."
	case err != nil:
		return err.Error()
	}
	return "The session could not start."
}

func modeTitle(m session.Mode) string {
	switch m {
	case session.ModePictureWord:
		return "Picture Match"
	case session.ModeRecognition:
		return "Listen and Match"
	case session.ModeLetterSearch:
		return "Letter Search"
	case session.ModeSayAloud:
		return "Say It"
	}
	return "Practice"
}

// Package session runs one practice session at a time: it draws rounds,
// records attempts, times the transitions between rounds and folds the
// finished session into history.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/wordspark/internal/catalog"
	"github.com/abhisek/wordspark/internal/rounds"
	"github.com/abhisek/wordspark/internal/stats"
)

var (
	// ErrNoCollectionsAssigned is set when Start is called without collections.
	ErrNoCollectionsAssigned = errors.New("no collections assigned")

	// ErrInsufficientPool is set when too few eligible items exist.
	ErrInsufficientPool = rounds.ErrInsufficientPool

	// ErrAlreadyMatched marks an attempt on a resolved choice. It is ignored.
	ErrAlreadyMatched = errors.New("choice already matched")

	// ErrSessionActive is set when Start is called while a session runs.
	ErrSessionActive = errors.New("a session is already running")
)

// ItemStore resolves items and records attempts. *catalog.ItemCatalog
// satisfies it.
type ItemStore interface {
	Get(id string) (catalog.Item, bool)
	RecordAttempt(id string, wasCorrect bool) bool
}

// CollectionSource returns the eligible item ids for a set of collections.
type CollectionSource interface {
	Eligible(collectionIDs []string) []string
}

// History receives finished sessions. *stats.Aggregator satisfies it.
type History interface {
	Append(r stats.Record) stats.Record
	CountSessionStart()
}

// Machine is the session state machine. All methods are safe to call from
// the UI goroutine while a transition timer fires on another; listeners are
// called after the machine's lock is released.
type Machine struct {
	mu    sync.Mutex
	cfg   Config
	state State
	tally stats.Tally

	// record is set once the running session has been folded into history.
	record *stats.Record

	timer Timer
	gen   uint64

	items   ItemStore
	source  CollectionSource
	history History

	sched   Scheduler
	sampler *rounds.Sampler
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger

	subs    []subscriber
	nextSub int
	outbox  []Event
}

type subscriber struct {
	id int
	fn func(Event)
}

// Option configures a Machine.
type Option func(*Machine)

// WithScheduler overrides the transition timer source.
func WithScheduler(s Scheduler) Option {
	return func(m *Machine) { m.sched = s }
}

// WithSampler overrides the round sampler.
func WithSampler(s *rounds.Sampler) Option {
	return func(m *Machine) { m.sampler = s }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDFunc overrides session id generation.
func WithIDFunc(fn func() string) Option {
	return func(m *Machine) { m.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// New creates an idle machine.
func New(cfg Config, items ItemStore, source CollectionSource, history History, opts ...Option) *Machine {
	m := &Machine{
		cfg:     cfg,
		state:   State{Phase: PhaseIdle, Mode: cfg.Mode},
		items:   items,
		source:  source,
		history: history,
		sched:   wallScheduler{},
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sampler == nil {
		m.sampler = rounds.NewSampler(nil)
	}
	return m
}

// Start begins a session over collectionIDs. On failure the machine keeps
// its phase and the reason is available from Err.
func (m *Machine) Start(collectionIDs []string) bool {
	var ok bool
	m.run(func() { ok = m.startLocked(collectionIDs) })
	return ok
}

func (m *Machine) startLocked(collectionIDs []string) bool {
	switch m.state.Phase {
	case PhaseActive, PhaseTransitioning:
		m.failLocked(ErrSessionActive)
		return false
	}
	if len(collectionIDs) == 0 {
		m.failLocked(ErrNoCollectionsAssigned)
		return false
	}

	need := max(rounds.MinRoundSize, m.cfg.roundSize())
	if n := countUnique(m.source.Eligible(collectionIDs)); n < need {
		m.logger.Info("not enough items to start", "eligible", n, "need", need)
		m.failLocked(ErrInsufficientPool)
		return false
	}

	m.stopTimerLocked()
	m.state = State{
		Phase:         PhaseActive,
		Mode:          m.cfg.Mode,
		SessionID:     m.newID(),
		CollectionIDs: append([]string(nil), collectionIDs...),
		StartedAt:     m.now(),
	}
	m.tally.Reset()
	m.record = nil
	m.history.CountSessionStart()
	m.logger.Info("session started", "session_id", m.state.SessionID, "mode", m.cfg.Mode, "collections", len(collectionIDs))
	m.emitLocked(EventStarted, nil)

	m.drawLocked()
	return true
}

// RecordMatch records a tap of choiceID onto the picture of targetItemID in
// a matching mode. It reports false, with no state change, when the choice
// is unknown or already matched, or when no round is accepting answers.
func (m *Machine) RecordMatch(choiceID, targetItemID string) (Attempt, bool) {
	var (
		a  Attempt
		ok bool
	)
	m.run(func() { a, ok = m.recordMatchLocked(choiceID, targetItemID) })
	return a, ok
}

func (m *Machine) recordMatchLocked(choiceID, targetItemID string) (Attempt, bool) {
	if m.state.Phase != PhaseActive || m.cfg.Mode.SingleTarget() {
		return Attempt{}, false
	}
	i := rounds.FindChoice(m.state.Choices, choiceID)
	if i < 0 || !contains(m.state.Round, targetItemID) {
		return Attempt{}, false
	}
	choice := &m.state.Choices[i]
	if choice.Matched {
		m.logger.Debug("attempt ignored", "choice", choiceID, "reason", ErrAlreadyMatched)
		return Attempt{}, false
	}

	correct := choice.ItemID == targetItemID
	m.state.Total++
	if correct {
		choice.Matched = true
		m.state.Correct++
	}
	// Wrong taps count against the item named by the tapped choice.
	m.items.RecordAttempt(choice.ItemID, correct)
	m.tally.Add(choice.ItemID, correct)

	a := Attempt{ItemID: choice.ItemID, Correct: correct}
	if correct && rounds.AllMatched(m.state.Choices) {
		a.RoundComplete = true
	}
	m.emitLocked(EventAttempt, &a)

	if a.RoundComplete {
		m.beginTransitionLocked(m.cfg.CorrectDelay)
	}
	return a, true
}

// RecordJudged records an externally judged answer for the current target
// in a single-target mode and draws the next round immediately.
func (m *Machine) RecordJudged(wasCorrect bool) (Attempt, bool) {
	var (
		a  Attempt
		ok bool
	)
	m.run(func() { a, ok = m.recordJudgedLocked(wasCorrect) })
	return a, ok
}

func (m *Machine) recordJudgedLocked(wasCorrect bool) (Attempt, bool) {
	if m.state.Phase != PhaseActive || !m.cfg.Mode.SingleTarget() || m.state.Target == "" {
		return Attempt{}, false
	}

	target := m.state.Target
	m.state.Total++
	if wasCorrect {
		m.state.Correct++
	}
	m.items.RecordAttempt(target, wasCorrect)
	m.tally.Add(target, wasCorrect)

	a := Attempt{ItemID: target, Correct: wasCorrect, RoundComplete: true}
	m.emitLocked(EventAttempt, &a)

	m.drawLocked()
	return a, true
}

// Skip abandons the current round without crediting an attempt.
func (m *Machine) Skip() bool {
	var ok bool
	m.run(func() {
		if m.state.Phase != PhaseActive {
			return
		}
		m.beginTransitionLocked(m.cfg.SkipDelay)
		ok = true
	})
	return ok
}

// End finishes the session from any non-idle phase, appends its record to
// history and returns the machine to idle.
func (m *Machine) End() (*stats.Record, bool) {
	var (
		rec *stats.Record
		ok  bool
	)
	m.run(func() {
		if m.state.Phase == PhaseIdle {
			return
		}
		m.stopTimerLocked()
		m.finishLocked()
		rec, ok = m.record, true
		m.clearLocked()
		m.logger.Info("session ended", "session_id", rec.ID, "accuracy", rec.Accuracy, "attempts", rec.TotalAttempts)
		m.emitLocked(EventIdle, nil)
	})
	return rec, ok
}

// Cancel abandons the session without writing a record.
func (m *Machine) Cancel() {
	m.run(func() {
		m.stopTimerLocked()
		if m.state.Phase == PhaseIdle {
			return
		}
		m.logger.Info("session cancelled", "session_id", m.state.SessionID)
		m.clearLocked()
		m.emitLocked(EventIdle, nil)
	})
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Phase
}

// Err returns the last "cannot proceed" condition.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Err
}

// ClearErr resets the error field.
func (m *Machine) ClearErr() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Err = nil
}

// Config returns the machine's settings.
func (m *Machine) Config() Config {
	return m.cfg
}

// Subscribe registers fn for every event and returns its cancel func.
func (m *Machine) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subs {
			if sub.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// advance is the timer callback. Fires from an older generation are stale
// and dropped.
func (m *Machine) advance(gen uint64) {
	m.run(func() {
		if gen != m.gen || m.state.Phase != PhaseTransitioning {
			return
		}
		m.timer = nil
		m.state.Transitioning = false
		m.drawLocked()
	})
}

func (m *Machine) beginTransitionLocked(d time.Duration) {
	m.stopTimerLocked()
	m.state.Phase = PhaseTransitioning
	m.state.Transitioning = true
	m.emitLocked(EventTransitioning, nil)

	gen := m.gen
	m.timer = m.sched.AfterFunc(d, func() { m.advance(gen) })
}

// drawLocked requests the next round. A sampler failure ends the session.
func (m *Machine) drawLocked() {
	eligible := m.source.Eligible(m.state.CollectionIDs)
	round, err := m.sampler.Draw(&m.state.Pool, m.cfg.roundSize(), eligible)
	if err != nil {
		m.logger.Info("pool exhausted, ending session", "session_id", m.state.SessionID, "error", err)
		m.state.Err = err
		m.state.Phase = PhaseEnded
		m.state.Round, m.state.Choices, m.state.Target = nil, nil, ""
		m.finishLocked()
		m.emitLocked(EventEnded, nil)
		return
	}

	m.state.Phase = PhaseActive
	m.state.Round = round
	m.state.RoundNumber++
	if m.cfg.Mode.SingleTarget() {
		m.state.Target = round[0]
		m.state.Choices = nil
	} else {
		m.state.Target = ""
		m.state.Choices = m.sampler.BuildChoices(round, m.labelLocked)
	}
	m.emitLocked(EventRoundReady, nil)
}

func (m *Machine) labelLocked(itemID string) string {
	if it, ok := m.items.Get(itemID); ok {
		return it.Name
	}
	return itemID
}

// finishLocked folds the running session into history exactly once.
func (m *Machine) finishLocked() {
	if m.record != nil {
		return
	}
	now := m.now()
	rec := m.history.Append(stats.Record{
		Mode:           string(m.cfg.Mode),
		CollectionIDs:  append([]string(nil), m.state.CollectionIDs...),
		TotalAttempts:  m.state.Total,
		CorrectAnswers: m.state.Correct,
		Timestamp:      now,
		Duration:       now.Sub(m.state.StartedAt),
		Items:          m.tally.Results(),
	})
	m.record = &rec
}

func (m *Machine) clearLocked() {
	m.state = State{Phase: PhaseIdle, Mode: m.cfg.Mode, Err: m.state.Err}
	m.tally.Reset()
}

func (m *Machine) stopTimerLocked() {
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Machine) failLocked(err error) {
	m.state.Err = err
	m.emitLocked(EventError, nil)
}

func (m *Machine) emitLocked(kind EventKind, a *Attempt) {
	ev := Event{Kind: kind, State: m.state.clone(), Attempt: a}
	if m.cfg.Announce {
		ev.Announce = m.announcementLocked(kind, a)
	}
	m.outbox = append(m.outbox, ev)
}

func (m *Machine) announcementLocked(kind EventKind, a *Attempt) *Announcement {
	var texts []string
	switch kind {
	case EventRoundReady:
		if m.cfg.Mode.SingleTarget() {
			texts = []string{Prompt(m.cfg.Mode, m.labelLocked(m.state.Target))}
		} else {
			for _, c := range m.state.Choices {
				texts = append(texts, c.Label)
			}
		}
	case EventAttempt:
		if a.Correct {
			texts = []string{"Correct"}
		} else {
			texts = []string{"Try again"}
		}
	default:
		return nil
	}
	return &Announcement{Texts: texts, VoiceID: m.cfg.VoiceID}
}

// run executes fn under the lock, then delivers queued events.
func (m *Machine) run(fn func()) {
	m.mu.Lock()
	fn()
	events := m.outbox
	m.outbox = nil
	subs := m.subs
	m.mu.Unlock()

	for _, ev := range events {
		for _, sub := range subs {
			sub.fn(ev)
		}
	}
}

func countUnique(ids []string) int {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package session

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/wordspark/internal/catalog"
	"github.com/abhisek/wordspark/internal/rounds"
	"github.com/abhisek/wordspark/internal/stats"
)

// --- fakes ---

type attemptCall struct {
	id      string
	correct bool
}

type fakeItems struct {
	mu       sync.Mutex
	names    map[string]string
	attempts []attemptCall
}

func newFakeItems(ids ...string) *fakeItems {
	f := &fakeItems{names: make(map[string]string)}
	for _, id := range ids {
		f.names[id] = "word-" + id
	}
	return f
}

func (f *fakeItems) Get(id string) (catalog.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.names[id]
	if !ok {
		return catalog.Item{}, false
	}
	return catalog.Item{ID: id, Name: name, Active: true}, true
}

func (f *fakeItems) RecordAttempt(id string, wasCorrect bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, attemptCall{id, wasCorrect})
	return true
}

type fakeSource struct {
	mu  sync.Mutex
	ids map[string][]string
}

func (f *fakeSource) set(collectionID string, ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ids == nil {
		f.ids = make(map[string][]string)
	}
	f.ids[collectionID] = ids
}

func (f *fakeSource) Eligible(collectionIDs []string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range collectionIDs {
		out = append(out, f.ids[c]...)
	}
	return out
}

type fakeHistory struct {
	records []stats.Record
	starts  int
}

func (f *fakeHistory) Append(r stats.Record) stats.Record {
	r.Accuracy = stats.Accuracy(r.CorrectAnswers, r.TotalAttempts)
	r.ID = "rec"
	f.records = append(f.records, r)
	return r
}

func (f *fakeHistory) CountSessionStart() { f.starts++ }

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &manualTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) pending() []*manualTimer {
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fireAll runs every pending timer.
func (s *manualScheduler) fireAll() {
	for _, t := range s.pending() {
		t.fired = true
		t.f()
	}
}

type harness struct {
	m       *Machine
	items   *fakeItems
	source  *fakeSource
	history *fakeHistory
	sched   *manualScheduler
	events  []Event
}

func newHarness(t *testing.T, cfg Config, ids ...string) *harness {
	t.Helper()
	h := &harness{
		items:   newFakeItems(ids...),
		source:  &fakeSource{},
		history: &fakeHistory{},
		sched:   &manualScheduler{},
	}
	h.source.set("c1", ids...)
	h.m = New(cfg, h.items, h.source, h.history,
		WithScheduler(h.sched),
		WithSampler(rounds.NewSampler(rand.NewPCG(1, 2))),
		WithIDFunc(func() string { return "session-1" }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	h.m.Subscribe(func(ev Event) { h.events = append(h.events, ev) })
	return h
}

func (h *harness) count(kind EventKind) int {
	n := 0
	for _, ev := range h.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// matchAll matches every choice of the current round correctly.
func (h *harness) matchAll(t *testing.T) {
	t.Helper()
	for _, c := range h.m.Snapshot().Choices {
		if _, ok := h.m.RecordMatch(c.ID, c.ItemID); !ok {
			t.Fatalf("RecordMatch(%s, %s) rejected", c.ID, c.ItemID)
		}
	}
}

// --- tests ---

func TestStart_ThreeItemScenario(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")

	if !h.m.Start([]string{"c1"}) {
		t.Fatalf("Start failed: %v", h.m.Err())
	}
	st := h.m.Snapshot()
	if st.Phase != PhaseActive {
		t.Fatalf("phase = %v, want active", st.Phase)
	}
	got := slices.Clone(st.Round)
	slices.Sort(got)
	if !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Fatalf("first round = %v, want A B C", st.Round)
	}

	order := map[string]string{}
	for _, c := range st.Choices {
		order[c.ItemID] = c.ID
	}
	for _, id := range []string{"A", "B", "C"} {
		a, ok := h.m.RecordMatch(order[id], id)
		if !ok || !a.Correct {
			t.Fatalf("match %s: ok=%v attempt=%+v", id, ok, a)
		}
	}

	st = h.m.Snapshot()
	if st.Phase != PhaseTransitioning {
		t.Errorf("phase = %v, want transitioning", st.Phase)
	}
	if h.count(EventTransitioning) != 1 {
		t.Errorf("transitioning events = %d, want 1", h.count(EventTransitioning))
	}
	if st.Correct != 3 || st.Total != 3 {
		t.Errorf("correct/total = %d/%d, want 3/3", st.Correct, st.Total)
	}
	if p := h.sched.pending(); len(p) != 1 || p[0].d != DefaultCorrectDelay {
		t.Fatalf("pending timers = %v, want one at %v", p, DefaultCorrectDelay)
	}
	if h.history.starts != 1 {
		t.Errorf("session starts = %d, want 1", h.history.starts)
	}

	h.sched.fireAll()
	st = h.m.Snapshot()
	if st.Phase != PhaseActive || st.RoundNumber != 2 {
		t.Errorf("after delay: phase %v round %d, want active round 2", st.Phase, st.RoundNumber)
	}
}

func TestStart_TwoItemsInsufficientPool(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B")

	if h.m.Start([]string{"c1"}) {
		t.Fatal("Start succeeded with two items")
	}
	if !errors.Is(h.m.Err(), ErrInsufficientPool) {
		t.Errorf("err = %v, want ErrInsufficientPool", h.m.Err())
	}
	if h.m.Phase() != PhaseIdle {
		t.Errorf("phase = %v, want idle", h.m.Phase())
	}
	if h.history.starts != 0 {
		t.Error("failed start counted as a session")
	}

	h.m.ClearErr()
	if h.m.Err() != nil {
		t.Error("ClearErr did not clear")
	}
}

func TestStart_NoCollections(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	if h.m.Start(nil) {
		t.Fatal("Start succeeded without collections")
	}
	if !errors.Is(h.m.Err(), ErrNoCollectionsAssigned) {
		t.Errorf("err = %v, want ErrNoCollectionsAssigned", h.m.Err())
	}
	if h.count(EventError) != 1 {
		t.Errorf("error events = %d, want 1", h.count(EventError))
	}
}

func TestStart_RejectedWhileActive(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	h.m.Start([]string{"c1"})
	if h.m.Start([]string{"c1"}) {
		t.Fatal("second Start succeeded")
	}
	if !errors.Is(h.m.Err(), ErrSessionActive) {
		t.Errorf("err = %v, want ErrSessionActive", h.m.Err())
	}
}

func TestRecordMatch_AlreadyMatchedIsIgnored(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	h.m.Start([]string{"c1"})
	c := h.m.Snapshot().Choices[0]

	if _, ok := h.m.RecordMatch(c.ID, c.ItemID); !ok {
		t.Fatal("first match rejected")
	}
	before := h.m.Snapshot()
	attempts := len(h.items.attempts)

	for i := 0; i < 2; i++ {
		if _, ok := h.m.RecordMatch(c.ID, c.ItemID); ok {
			t.Error("repeat match accepted")
		}
	}
	after := h.m.Snapshot()
	if after.Correct != before.Correct || after.Total != before.Total {
		t.Errorf("counters changed: %d/%d -> %d/%d", before.Correct, before.Total, after.Correct, after.Total)
	}
	if len(h.items.attempts) != attempts {
		t.Error("repeat match recorded an item attempt")
	}
}

func TestRecordMatch_Incorrect(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	h.m.Start([]string{"c1"})
	st := h.m.Snapshot()
	c := st.Choices[0]
	var wrongTarget string
	for _, id := range st.Round {
		if id != c.ItemID {
			wrongTarget = id
			break
		}
	}

	a, ok := h.m.RecordMatch(c.ID, wrongTarget)
	if !ok || a.Correct {
		t.Fatalf("attempt = %+v ok=%v, want recorded incorrect", a, ok)
	}
	st = h.m.Snapshot()
	if st.Total != 1 || st.Correct != 0 {
		t.Errorf("correct/total = %d/%d, want 0/1", st.Correct, st.Total)
	}
	if st.Choices[0].Matched {
		t.Error("wrong tap matched the choice")
	}
	last := h.items.attempts[len(h.items.attempts)-1]
	if last != (attemptCall{c.ItemID, false}) {
		t.Errorf("item attempt = %+v, want %s incorrect", last, c.ItemID)
	}

	// The same choice can still be matched correctly afterwards.
	if a, ok := h.m.RecordMatch(c.ID, c.ItemID); !ok || !a.Correct {
		t.Error("correct retry rejected")
	}
}

func TestRecordMatch_RejectsUnknownInput(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	if _, ok := h.m.RecordMatch("choice-1", "A"); ok {
		t.Error("match accepted while idle")
	}
	h.m.Start([]string{"c1"})
	if _, ok := h.m.RecordMatch("choice-9", "A"); ok {
		t.Error("unknown choice accepted")
	}
	if _, ok := h.m.RecordMatch("choice-1", "Z"); ok {
		t.Error("target outside the round accepted")
	}
	if h.m.Snapshot().Total != 0 {
		t.Error("rejected input changed counters")
	}
}

func TestScoreMonotonicity(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	h := newHarness(t, DefaultConfig(), ids...)
	h.m.Start([]string{"c1"})
	rng := rand.New(rand.NewPCG(5, 6))

	prevCorrect, prevTotal := 0, 0
	for step := 0; step < 300; step++ {
		st := h.m.Snapshot()
		switch {
		case st.Phase == PhaseTransitioning:
			h.sched.fireAll()
		case rng.IntN(10) == 0:
			h.m.Skip()
		default:
			c := st.Choices[rng.IntN(len(st.Choices))]
			target := st.Round[rng.IntN(len(st.Round))]
			h.m.RecordMatch(c.ID, target)
		}

		st = h.m.Snapshot()
		if st.Correct > st.Total {
			t.Fatalf("step %d: correct %d > total %d", step, st.Correct, st.Total)
		}
		if st.Correct < prevCorrect || st.Total < prevTotal {
			t.Fatalf("step %d: counters decreased", step)
		}
		prevCorrect, prevTotal = st.Correct, st.Total
	}
}

func TestSkip(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "a", "b", "c", "d", "e", "f")
	h.m.Start([]string{"c1"})
	first := h.m.Snapshot().Round

	if !h.m.Skip() {
		t.Fatal("Skip rejected")
	}
	st := h.m.Snapshot()
	if st.Phase != PhaseTransitioning || st.Total != 0 {
		t.Errorf("after skip: phase %v total %d", st.Phase, st.Total)
	}
	if p := h.sched.pending(); len(p) != 1 || p[0].d != DefaultSkipDelay {
		t.Fatalf("want one pending timer at %v", DefaultSkipDelay)
	}
	if h.m.Skip() {
		t.Error("Skip accepted while transitioning")
	}

	h.sched.fireAll()
	st = h.m.Snapshot()
	if st.Phase != PhaseActive {
		t.Fatalf("phase = %v, want active", st.Phase)
	}
	for _, id := range st.Round {
		if slices.Contains(first, id) {
			t.Errorf("%s repeated right after skip", id)
		}
	}
}

func TestStaleTimerIgnoredAfterEnd(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	h.m.Start([]string{"c1"})
	h.m.Skip()
	stale := h.sched.pending()[0]

	if _, ok := h.m.End(); !ok {
		t.Fatal("End failed")
	}
	if !stale.stopped {
		t.Error("End did not cancel the pending timer")
	}

	// A new session starts; the old timer firing late must not advance it.
	h.m.Start([]string{"c1"})
	round := h.m.Snapshot().RoundNumber
	stale.f()
	st := h.m.Snapshot()
	if st.Phase != PhaseActive || st.RoundNumber != round {
		t.Errorf("stale timer advanced the new session: %v round %d", st.Phase, st.RoundNumber)
	}
}

func TestCancel(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	h.m.Start([]string{"c1"})
	h.matchAll(t)
	timer := h.sched.pending()[0]

	h.m.Cancel()
	if !timer.stopped {
		t.Error("Cancel did not stop the timer")
	}
	if h.m.Phase() != PhaseIdle {
		t.Errorf("phase = %v, want idle", h.m.Phase())
	}
	if len(h.history.records) != 0 {
		t.Error("Cancel wrote a record")
	}
	timer.f()
	if h.m.Phase() != PhaseIdle {
		t.Error("stale fire after cancel changed phase")
	}
}

func TestEnd_AppendsRecord(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	if _, ok := h.m.End(); ok {
		t.Error("End succeeded while idle")
	}

	h.m.Start([]string{"c1"})
	st := h.m.Snapshot()
	c := st.Choices[0]
	wrong := st.Round[0]
	if wrong == c.ItemID {
		wrong = st.Round[1]
	}
	h.m.RecordMatch(c.ID, wrong)
	h.matchAll(t)

	rec, ok := h.m.End()
	if !ok || rec == nil {
		t.Fatal("End failed")
	}
	if rec.TotalAttempts != 4 || rec.CorrectAnswers != 3 || rec.Accuracy != 75 {
		t.Errorf("record = %+v, want 3/4 at 75", rec)
	}
	if len(rec.Items) != 3 {
		t.Errorf("per-item results = %v, want 3 items", rec.Items)
	}
	if len(h.history.records) != 1 {
		t.Errorf("history = %d records, want 1", len(h.history.records))
	}
	st = h.m.Snapshot()
	if st.Phase != PhaseIdle || st.Round != nil || st.Total != 0 {
		t.Errorf("state not cleared: %+v", st)
	}
}

func TestPoolExhaustedDuringTransitionEnds(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	h.m.Start([]string{"c1"})
	h.matchAll(t)

	// Two items get removed while the transition is pending.
	h.source.set("c1", "A", "B")
	h.sched.fireAll()

	if h.m.Phase() != PhaseEnded {
		t.Fatalf("phase = %v, want ended", h.m.Phase())
	}
	if !errors.Is(h.m.Err(), ErrInsufficientPool) {
		t.Errorf("err = %v, want ErrInsufficientPool", h.m.Err())
	}
	if h.count(EventEnded) != 1 {
		t.Errorf("ended events = %d, want 1", h.count(EventEnded))
	}
	if len(h.history.records) != 1 {
		t.Fatalf("history = %d records, want 1", len(h.history.records))
	}

	rec, ok := h.m.End()
	if !ok || rec.CorrectAnswers != 3 {
		t.Errorf("End from ended = %+v, %v", rec, ok)
	}
	if len(h.history.records) != 1 {
		t.Error("End appended the ended session twice")
	}
	if h.m.Phase() != PhaseIdle {
		t.Errorf("phase = %v, want idle", h.m.Phase())
	}
}

func TestSingleTargetMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeSayAloud
	h := newHarness(t, cfg, "A", "B", "C", "D")
	h.m.Start([]string{"c1"})

	st := h.m.Snapshot()
	if st.Target == "" || len(st.Round) != 1 || st.Choices != nil {
		t.Fatalf("single-target round = %+v", st)
	}
	if _, ok := h.m.RecordMatch("choice-1", st.Target); ok {
		t.Error("RecordMatch accepted in single-target mode")
	}

	first := st.Target
	a, ok := h.m.RecordJudged(true)
	if !ok || !a.Correct || a.ItemID != first {
		t.Fatalf("attempt = %+v ok=%v", a, ok)
	}
	st = h.m.Snapshot()
	if st.Phase != PhaseActive || st.RoundNumber != 2 || st.Target == first {
		t.Errorf("after judged attempt: %+v", st)
	}
	if len(h.sched.timers) != 0 {
		t.Error("judged attempt scheduled a delay")
	}

	h.m.RecordJudged(false)
	st = h.m.Snapshot()
	if st.Correct != 1 || st.Total != 2 {
		t.Errorf("correct/total = %d/%d, want 1/2", st.Correct, st.Total)
	}
}

func TestSingleTargetPoolExhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeLetterSearch
	h := newHarness(t, cfg, "A", "B", "C")
	h.m.Start([]string{"c1"})
	h.source.set("c1")

	h.m.RecordJudged(true)
	if h.m.Phase() != PhaseEnded {
		t.Errorf("phase = %v, want ended", h.m.Phase())
	}
	if len(h.history.records) != 1 {
		t.Error("ended session not recorded")
	}
}

func TestAnnouncements(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Announce = true
	cfg.VoiceID = "en-kid"
	h := newHarness(t, cfg, "A", "B", "C")
	h.m.Start([]string{"c1"})

	var ready *Event
	for i := range h.events {
		if h.events[i].Kind == EventRoundReady {
			ready = &h.events[i]
		}
	}
	if ready == nil || ready.Announce == nil {
		t.Fatal("round-ready event carried no announcement")
	}
	if ready.Announce.VoiceID != "en-kid" || len(ready.Announce.Texts) != 3 {
		t.Errorf("announcement = %+v", ready.Announce)
	}
	for i, c := range ready.State.Choices {
		if ready.Announce.Texts[i] != c.Label {
			t.Errorf("text %d = %q, want %q", i, ready.Announce.Texts[i], c.Label)
		}
	}
}

func TestAnnouncementsDisabled(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	h.m.Start([]string{"c1"})
	for _, ev := range h.events {
		if ev.Announce != nil {
			t.Errorf("%v event announced with announcements off", ev.Kind)
		}
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	n := 0
	cancel := h.m.Subscribe(func(Event) { n++ })
	h.m.Start([]string{"c1"})
	if n == 0 {
		t.Fatal("subscriber not called")
	}
	cancel()
	seen := n
	h.m.Skip()
	if n != seen {
		t.Error("subscriber called after cancel")
	}
}

func TestEventsCarrySnapshots(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "A", "B", "C")
	h.m.Start([]string{"c1"})
	h.matchAll(t)

	var totals []int
	for _, ev := range h.events {
		if ev.Kind == EventAttempt {
			totals = append(totals, ev.State.Total)
		}
	}
	if !slices.Equal(totals, []int{1, 2, 3}) {
		t.Errorf("attempt event totals = %v, want [1 2 3]", totals)
	}
}

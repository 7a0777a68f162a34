package session

import "testing"

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(" " + string(m) + " ")
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMode("karaoke"); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestSingleTarget(t *testing.T) {
	tests := map[Mode]bool{
		ModePictureWord:  false,
		ModeRecognition:  false,
		ModeLetterSearch: true,
		ModeSayAloud:     true,
	}
	for m, want := range tests {
		if got := m.SingleTarget(); got != want {
			t.Errorf("%s.SingleTarget() = %v, want %v", m, got, want)
		}
	}
}

func TestExpectedAnswer(t *testing.T) {
	if got := ExpectedAnswer(ModeLetterSearch, "apple"); got != "A" {
		t.Errorf("letter-search answer = %q, want A", got)
	}
	if got := ExpectedAnswer(ModeLetterSearch, "  ice cream"); got != "I" {
		t.Errorf("letter-search answer = %q, want I", got)
	}
	if got := ExpectedAnswer(ModeSayAloud, "apple"); got != "apple" {
		t.Errorf("say-aloud answer = %q, want apple", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.RoundSize = 0
	if cfg.Validate() == nil {
		t.Error("round size 0 accepted")
	}

	cfg = DefaultConfig()
	cfg.Mode = "nope"
	if cfg.Validate() == nil {
		t.Error("unknown mode accepted")
	}

	cfg = DefaultConfig()
	cfg.Mode = ModeSayAloud
	if cfg.roundSize() != 1 {
		t.Errorf("single-target round size = %d, want 1", cfg.roundSize())
	}
}

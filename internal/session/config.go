package session

import (
	"fmt"
	"time"
)

// Default timings for round transitions.
const (
	DefaultCorrectDelay = 750 * time.Millisecond
	DefaultSkipDelay    = 500 * time.Millisecond
)

// Config holds per-machine practice settings.
type Config struct {
	Mode         Mode
	RoundSize    int
	CorrectDelay time.Duration
	SkipDelay    time.Duration

	// Announce enables speech-output announcements on events.
	Announce bool
	VoiceID  string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Mode:         ModePictureWord,
		RoundSize:    3,
		CorrectDelay: DefaultCorrectDelay,
		SkipDelay:    DefaultSkipDelay,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.RoundSize < 1 {
		return fmt.Errorf("round size must be at least 1, got %d", c.RoundSize)
	}
	if c.CorrectDelay < 0 || c.SkipDelay < 0 {
		return fmt.Errorf("transition delays must not be negative")
	}
	return nil
}

// roundSize is the number of items drawn per round.
func (c Config) roundSize() int {
	if c.Mode.SingleTarget() {
		return 1
	}
	return c.RoundSize
}

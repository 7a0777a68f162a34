// Package config loads wordspark settings from defaults and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/wordspark/internal/session"
	"github.com/abhisek/wordspark/internal/store"
)

// Config holds all application configuration.
type Config struct {
	// DBPath is the storage file. Empty means store.DefaultDBPath.
	DBPath string

	// Backend selects the storage engine.
	// Values: "bolt", "sqlite", "memory"
	Backend string

	Practice PracticeConfig
	Speech   SpeechConfig

	// LogLevel is one of debug, info, warn, error. Default: info.
	LogLevel string

	// Location is the IANA zone used for calendar-day statistics.
	// Empty means the machine's local zone.
	Location string
}

// PracticeConfig configures the session machine.
type PracticeConfig struct {
	Mode         session.Mode
	RoundSize    int
	CorrectDelay time.Duration // Default: 750ms
	SkipDelay    time.Duration // Default: 500ms
}

// SpeechConfig configures announcements.
type SpeechConfig struct {
	Announce bool
	VoiceID  string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	sc := session.DefaultConfig()
	return Config{
		Backend: store.BackendBolt,
		Practice: PracticeConfig{
			Mode:         sc.Mode,
			RoundSize:    sc.RoundSize,
			CorrectDelay: sc.CorrectDelay,
			SkipDelay:    sc.SkipDelay,
		},
		LogLevel: "info",
	}
}

// LoadDotEnv copies variables from the given .env files into the process
// environment. Variables already set win, and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset or unparsable values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("WORDSPARK_DB"); p != "" {
		cfg.DBPath = p
	}
	if b := os.Getenv("WORDSPARK_BACKEND"); b != "" {
		cfg.Backend = strings.ToLower(b)
	}

	if m := os.Getenv("WORDSPARK_MODE"); m != "" {
		cfg.Practice.Mode = session.Mode(strings.ToLower(m))
	}
	if n, err := strconv.Atoi(os.Getenv("WORDSPARK_ROUND_SIZE")); err == nil {
		cfg.Practice.RoundSize = n
	}
	if d, err := time.ParseDuration(os.Getenv("WORDSPARK_CORRECT_DELAY")); err == nil {
		cfg.Practice.CorrectDelay = d
	}
	if d, err := time.ParseDuration(os.Getenv("WORDSPARK_SKIP_DELAY")); err == nil {
		cfg.Practice.SkipDelay = d
	}

	if b, err := strconv.ParseBool(os.Getenv("WORDSPARK_ANNOUNCE")); err == nil {
		cfg.Speech.Announce = b
	}
	if v := os.Getenv("WORDSPARK_VOICE"); v != "" {
		cfg.Speech.VoiceID = v
	}

	if l := os.Getenv("WORDSPARK_LOG_LEVEL"); l != "" {
		cfg.LogLevel = strings.ToLower(l)
	}
	if tz := os.Getenv("WORDSPARK_TZ"); tz != "" {
		cfg.Location = tz
	}

	return cfg
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	switch c.Backend {
	case store.BackendBolt, store.BackendSQLite, store.BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Backend)
	}
	if err := c.Session().Validate(); err != nil {
		return fmt.Errorf("practice: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Loc(); err != nil {
		return err
	}
	return nil
}

// Session returns the machine settings.
func (c Config) Session() session.Config {
	return session.Config{
		Mode:         c.Practice.Mode,
		RoundSize:    c.Practice.RoundSize,
		CorrectDelay: c.Practice.CorrectDelay,
		SkipDelay:    c.Practice.SkipDelay,
		Announce:     c.Speech.Announce,
		VoiceID:      c.Speech.VoiceID,
	}
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Loc resolves Location.
func (c Config) Loc() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", c.Location, err)
	}
	return loc, nil
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/wordspark/internal/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Backend != "bolt" {
		t.Errorf("Backend = %q, want bolt", cfg.Backend)
	}
	if cfg.Practice.CorrectDelay != 750*time.Millisecond || cfg.Practice.SkipDelay != 500*time.Millisecond {
		t.Errorf("delays = %v/%v", cfg.Practice.CorrectDelay, cfg.Practice.SkipDelay)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("WORDSPARK_DB", "/tmp/ws.db")
	t.Setenv("WORDSPARK_BACKEND", "SQLite")
	t.Setenv("WORDSPARK_MODE", "say-aloud")
	t.Setenv("WORDSPARK_ROUND_SIZE", "4")
	t.Setenv("WORDSPARK_CORRECT_DELAY", "1s")
	t.Setenv("WORDSPARK_SKIP_DELAY", "250ms")
	t.Setenv("WORDSPARK_ANNOUNCE", "true")
	t.Setenv("WORDSPARK_VOICE", "en-kid")
	t.Setenv("WORDSPARK_LOG_LEVEL", "DEBUG")
	t.Setenv("WORDSPARK_TZ", "UTC")

	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.DBPath != "/tmp/ws.db" || cfg.Backend != "sqlite" {
		t.Errorf("storage = %q/%q", cfg.DBPath, cfg.Backend)
	}

	sc := cfg.Session()
	if sc.Mode != session.ModeSayAloud || sc.RoundSize != 4 {
		t.Errorf("practice = %+v", sc)
	}
	if sc.CorrectDelay != time.Second || sc.SkipDelay != 250*time.Millisecond {
		t.Errorf("delays = %v/%v", sc.CorrectDelay, sc.SkipDelay)
	}
	if !sc.Announce || sc.VoiceID != "en-kid" {
		t.Errorf("speech = %v/%q", sc.Announce, sc.VoiceID)
	}

	lvl, _ := cfg.Level()
	if lvl != slog.LevelDebug {
		t.Errorf("level = %v, want debug", lvl)
	}
	loc, _ := cfg.Loc()
	if loc != time.UTC {
		t.Errorf("location = %v, want UTC", loc)
	}
}

func TestConfigFromEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("WORDSPARK_ROUND_SIZE", "many")
	t.Setenv("WORDSPARK_CORRECT_DELAY", "soon")
	t.Setenv("WORDSPARK_ANNOUNCE", "maybe")

	cfg := ConfigFromEnv()
	def := DefaultConfig()
	if cfg.Practice.RoundSize != def.Practice.RoundSize {
		t.Errorf("RoundSize = %d, want default", cfg.Practice.RoundSize)
	}
	if cfg.Practice.CorrectDelay != def.Practice.CorrectDelay {
		t.Errorf("CorrectDelay = %v, want default", cfg.Practice.CorrectDelay)
	}
	if cfg.Speech.Announce {
		t.Error("Announce enabled by garbage value")
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"backend":  func(c *Config) { c.Backend = "redis" },
		"mode":     func(c *Config) { c.Practice.Mode = "karaoke" },
		"round":    func(c *Config) { c.Practice.RoundSize = 0 },
		"delay":    func(c *Config) { c.Practice.SkipDelay = -time.Second },
		"level":    func(c *Config) { c.LogLevel = "loud" },
		"location": func(c *Config) { c.Location = "Mars/Olympus" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	data := "WORDSPARK_VOICE=en-dotenv\nWORDSPARK_ROUND_SIZE=5\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	// Register cleanup, then clear so the file can supply the values.
	t.Setenv("WORDSPARK_VOICE", "")
	os.Unsetenv("WORDSPARK_VOICE")
	t.Setenv("WORDSPARK_ROUND_SIZE", "4")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	cfg := ConfigFromEnv()
	if cfg.Speech.VoiceID != "en-dotenv" {
		t.Errorf("VoiceID = %q, want en-dotenv", cfg.Speech.VoiceID)
	}
	if cfg.Practice.RoundSize != 4 {
		t.Errorf("RoundSize = %d, want the environment's 4", cfg.Practice.RoundSize)
	}
}

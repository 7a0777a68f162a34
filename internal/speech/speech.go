// Package speech holds the contracts for the speech collaborators the
// practice engine talks to, plus a typed-answer judge used in the terminal.
package speech

import (
	"context"
	"log/slog"
)

// Speaker says text aloud in the given voice.
type Speaker interface {
	Speak(ctx context.Context, text, voiceID string) error
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(ctx context.Context, text, voiceID string) error

func (f SpeakerFunc) Speak(ctx context.Context, text, voiceID string) error {
	return f(ctx, text, voiceID)
}

// Silent discards every announcement.
type Silent struct{}

func (Silent) Speak(context.Context, string, string) error { return nil }

// Logged records announcements through a logger instead of speaking them.
type Logged struct {
	Logger *slog.Logger
}

func (l Logged) Speak(_ context.Context, text, voiceID string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("announce", "text", text, "voice", voiceID)
	return nil
}

// SpeakAll says each text in order and stops at the first error.
func SpeakAll(ctx context.Context, s Speaker, texts []string, voiceID string) error {
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Speak(ctx, text, voiceID); err != nil {
			return err
		}
	}
	return nil
}

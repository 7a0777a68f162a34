package session

import (
	"fmt"
	"strings"
	"unicode"
)

// Mode is the exercise type.
type Mode string

const (
	// ModePictureWord shows pictures and asks for the matching word tiles.
	ModePictureWord Mode = "picture-word"

	// ModeRecognition shows words and asks for the matching picture tiles.
	ModeRecognition Mode = "recognition"

	// ModeLetterSearch shows one picture; the learner names its first letter.
	ModeLetterSearch Mode = "letter-search"

	// ModeSayAloud shows one picture; the learner says the word.
	ModeSayAloud Mode = "say-aloud"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModePictureWord, ModeRecognition, ModeLetterSearch, ModeSayAloud}

// ParseMode returns the mode named by s.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown practice mode %q", s)
}

// SingleTarget reports whether the mode presents one item per round and
// takes an externally judged answer.
func (m Mode) SingleTarget() bool {
	return m == ModeLetterSearch || m == ModeSayAloud
}

// ExpectedAnswer returns what the learner should produce for an item named
// name in mode m.
func ExpectedAnswer(m Mode, name string) string {
	if m == ModeLetterSearch {
		for _, r := range name {
			if unicode.IsLetter(r) {
				return string(unicode.ToUpper(r))
			}
		}
		return ""
	}
	return name
}

// Prompt returns the instruction spoken or shown for a single-target round.
func Prompt(m Mode, name string) string {
	switch m {
	case ModeLetterSearch:
		return fmt.Sprintf("What letter does %s start with?", name)
	case ModeSayAloud:
		return fmt.Sprintf("Say %s", name)
	}
	return "Match each picture with its word"
}

package speech

import (
	"strings"
	"unicode"
)

// Judge decides whether an utterance matches the expected answer.
type Judge interface {
	Judge(target, utterance string) bool
}

// JudgeFunc adapts a function to the Judge interface.
type JudgeFunc func(target, utterance string) bool

func (f JudgeFunc) Judge(target, utterance string) bool { return f(target, utterance) }

// TextJudge compares typed answers. Case, punctuation and surrounding
// filler ("the letter b", "it's a cat") are ignored, and a single-letter
// target also accepts the letter's spoken name.
type TextJudge struct{}

var _ Judge = TextJudge{}

var fillers = map[string]bool{
	"a": true, "an": true, "the": true, "its": true, "it": true, "is": true,
	"letter": true, "word": true, "say": true, "um": true,
}

var letterNames = map[string]string{
	"ay": "a", "bee": "b", "be": "b", "see": "c", "sea": "c", "cee": "c",
	"dee": "d", "ee": "e", "ef": "f", "eff": "f", "gee": "g", "aitch": "h",
	"eye": "i", "jay": "j", "kay": "k", "el": "l", "ell": "l", "em": "m",
	"en": "n", "oh": "o", "pee": "p", "pea": "p", "cue": "q", "queue": "q",
	"ar": "r", "are": "r", "ess": "s", "tee": "t", "tea": "t", "you": "u",
	"vee": "v", "double u": "w", "doubleyou": "w", "ex": "x", "why": "y",
	"wye": "y", "zed": "z", "zee": "z",
}

func (TextJudge) Judge(target, utterance string) bool {
	want := normalize(target)
	if want == "" {
		return false
	}
	words := strings.Fields(normalize(utterance))

	if len([]rune(want)) == 1 {
		return judgeLetter(want, words)
	}

	got := strings.Join(words, " ")
	if got == want {
		return true
	}
	return strings.Join(stripFillers(words), " ") == want
}

func judgeLetter(want string, words []string) bool {
	words = stripFillers(words)
	if len(words) == 0 {
		return false
	}
	if len(words) == 2 {
		if letterNames[words[0]+" "+words[1]] == want {
			return true
		}
	}
	if len(words) != 1 {
		return false
	}
	w := words[0]
	return w == want || letterNames[w] == want
}

// stripFillers drops filler words, keeping a lone "a" since it may be the
// answer itself.
func stripFillers(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if fillers[w] {
			continue
		}
		out = append(out, w)
	}
	if len(out) == 0 && len(words) > 0 && words[len(words)-1] == "a" {
		return []string{"a"}
	}
	return out
}

// normalize lower-cases s, drops apostrophes and turns any other
// non-alphanumeric run into a single space.
func normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

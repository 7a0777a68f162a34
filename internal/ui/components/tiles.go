package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordspark/internal/rounds"
	"github.com/abhisek/wordspark/internal/ui/theme"
)

// PictureSlot is one picture in a matching round.
type PictureSlot struct {
	Key     string // key that targets this slot
	ItemID  string
	Caption string // what stands in for the picture
	Matched bool
}

// Board renders a matching round: a row of pictures above a row of word
// tiles. Tiles are picked by number, pictures by letter.
type Board struct {
	Pictures []PictureSlot
	Choices  []rounds.Choice
	Held     string // id of the selected choice, or ""
}

// SlotKeys are the keys assigned to picture slots in order.
var SlotKeys = []string{"a", "b", "c", "d", "e", "f"}

// NewBoard lays out pictures in round order with their captions.
func NewBoard(round []string, choices []rounds.Choice, caption func(itemID string) string) Board {
	b := Board{Choices: choices}
	matched := make(map[string]bool)
	for _, c := range choices {
		if c.Matched {
			matched[c.ItemID] = true
		}
	}
	for i, id := range round {
		key := ""
		if i < len(SlotKeys) {
			key = SlotKeys[i]
		}
		b.Pictures = append(b.Pictures, PictureSlot{
			Key:     key,
			ItemID:  id,
			Caption: caption(id),
			Matched: matched[id],
		})
	}
	return b
}

// ChoiceForKey returns the choice picked by a number key.
func (b Board) ChoiceForKey(key string) (rounds.Choice, bool) {
	for i, c := range b.Choices {
		if key == fmt.Sprint(i+1) {
			return c, true
		}
	}
	return rounds.Choice{}, false
}

// PictureForKey returns the picture slot targeted by a letter key.
func (b Board) PictureForKey(key string) (PictureSlot, bool) {
	for _, p := range b.Pictures {
		if p.Key == key {
			return p, true
		}
	}
	return PictureSlot{}, false
}

// View renders the board at width.
func (b Board) View(width int) string {
	tileWidth := min(max(width/max(len(b.Pictures), 1)-4, 10), 22)

	pics := make([]string, 0, len(b.Pictures))
	for _, p := range b.Pictures {
		style := theme.Picture
		label := p.Caption
		if p.Matched {
			style = theme.PictureDone
			label = "✔ " + label
		}
		body := style.Width(tileWidth).Height(3).Render(label)
		pics = append(pics, lipgloss.JoinVertical(lipgloss.Center, body, theme.Hint.Render(p.Key)))
	}

	words := make([]string, 0, len(b.Choices))
	for i, c := range b.Choices {
		style := theme.Word
		switch {
		case c.Matched:
			style = theme.WordMatched
		case c.ID == b.Held:
			style = theme.WordSelected
		}
		words = append(words, style.Render(fmt.Sprintf("%d  %s", i+1, c.Label)))
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, joinSpaced(pics)))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, joinSpaced(words)))
	return sb.String()
}

func joinSpaced(blocks []string) string {
	spaced := make([]string, 0, 2*len(blocks))
	for i, s := range blocks {
		if i > 0 {
			spaced = append(spaced, "  ")
		}
		spaced = append(spaced, s)
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, spaced...)
}

package components

import (
	"strings"
	"testing"

	"github.com/abhisek/wordspark/internal/rounds"
)

func testBoard() Board {
	round := []string{"i1", "i2", "i3"}
	choices := []rounds.Choice{
		{ID: "choice-1", ItemID: "i2", Label: "ball"},
		{ID: "choice-2", ItemID: "i3", Label: "cat", Matched: true},
		{ID: "choice-3", ItemID: "i1", Label: "apple"},
	}
	return NewBoard(round, choices, func(id string) string { return "pic-" + id })
}

func TestBoard_Keys(t *testing.T) {
	b := testBoard()

	c, ok := b.ChoiceForKey("3")
	if !ok || c.Label != "apple" {
		t.Errorf("ChoiceForKey(3) = %+v, %v", c, ok)
	}
	if _, ok := b.ChoiceForKey("4"); ok {
		t.Error("ChoiceForKey(4) found a choice")
	}

	p, ok := b.PictureForKey("b")
	if !ok || p.ItemID != "i2" {
		t.Errorf("PictureForKey(b) = %+v, %v", p, ok)
	}
	if _, ok := b.PictureForKey("z"); ok {
		t.Error("PictureForKey(z) found a slot")
	}
}

func TestBoard_MatchedPictures(t *testing.T) {
	b := testBoard()
	for _, p := range b.Pictures {
		if want := p.ItemID == "i3"; p.Matched != want {
			t.Errorf("%s matched = %v, want %v", p.ItemID, p.Matched, want)
		}
	}
}

func TestBoard_View(t *testing.T) {
	v := testBoard().View(80)
	for _, want := range []string{"pic-i1", "1  ball", "3  apple"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	if v := NewProgressBar("", 1.5, true, 20).View(); !strings.Contains(v, "150%") {
		t.Errorf("percent label = %q", v)
	}
	if v := AccuracyBar("x", 40, 30).View(); !strings.Contains(v, "40%") {
		t.Errorf("accuracy bar = %q", v)
	}
}

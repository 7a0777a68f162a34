package rounds

import "strconv"

// Choice is one labelled answer tile in a matching round.
type Choice struct {
	ID      string `json:"id"`
	ItemID  string `json:"item_id"`
	Label   string `json:"label"`
	Matched bool   `json:"matched"`
}

// BuildChoices returns one choice per drawn item, labelled by label and
// shuffled independently of the round order. For rounds of two or more the
// result never lines up position-for-position with the round.
func (s *Sampler) BuildChoices(round []string, label func(itemID string) string) []Choice {
	choices := make([]Choice, len(round))
	for i, id := range round {
		choices[i] = Choice{ItemID: id, Label: label(id)}
	}

	s.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	if len(choices) >= 2 && alignedWith(choices, round) {
		// Rotate by one: a derangement of the identity order.
		first := choices[0]
		copy(choices, choices[1:])
		choices[len(choices)-1] = first
	}

	for i := range choices {
		choices[i].ID = "choice-" + strconv.Itoa(i+1)
	}
	return choices
}

func alignedWith(choices []Choice, round []string) bool {
	for i := range choices {
		if choices[i].ItemID != round[i] {
			return false
		}
	}
	return true
}

// FindChoice returns the index of the choice with id, or -1.
func FindChoice(choices []Choice, id string) int {
	for i := range choices {
		if choices[i].ID == id {
			return i
		}
	}
	return -1
}

// AllMatched reports whether every choice has been matched.
func AllMatched(choices []Choice) bool {
	for _, c := range choices {
		if !c.Matched {
			return false
		}
	}
	return len(choices) > 0
}

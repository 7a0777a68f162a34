package catalog

import "strings"

// SeedItems is the bundled picture-word set installed on first run.
var SeedItems = []ItemInput{
	{Name: "apple", ImageRef: "asset:apple", Category: "food", Difficulty: DifficultyEasy, Tags: []string{"fruit"}},
	{Name: "ball", ImageRef: "asset:ball", Category: "toys", Difficulty: DifficultyEasy},
	{Name: "cat", ImageRef: "asset:cat", Category: "animals", Difficulty: DifficultyEasy, Tags: []string{"pet"}},
	{Name: "dog", ImageRef: "asset:dog", Category: "animals", Difficulty: DifficultyEasy, Tags: []string{"pet"}},
	{Name: "fish", ImageRef: "asset:fish", Category: "animals", Difficulty: DifficultyEasy},
	{Name: "hat", ImageRef: "asset:hat", Category: "clothes", Difficulty: DifficultyEasy},
	{Name: "kite", ImageRef: "asset:kite", Category: "toys", Difficulty: DifficultyMedium},
	{Name: "moon", ImageRef: "asset:moon", Category: "nature", Difficulty: DifficultyMedium},
	{Name: "sun", ImageRef: "asset:sun", Category: "nature", Difficulty: DifficultyEasy},
	{Name: "tree", ImageRef: "asset:tree", Category: "nature", Difficulty: DifficultyMedium},
	{Name: "banana", ImageRef: "asset:banana", Category: "food", Difficulty: DifficultyMedium, Tags: []string{"fruit"}},
	{Name: "rabbit", ImageRef: "asset:rabbit", Category: "animals", Difficulty: DifficultyHard, Tags: []string{"pet"}},
}

// SeedID returns the stable id of the seed item named name.
func SeedID(name string) string {
	return "seed-" + strings.ToLower(name)
}

// SeedIDs returns the ids of every seed item in seed order.
func SeedIDs() []string {
	ids := make([]string, len(SeedItems))
	for i, s := range SeedItems {
		ids[i] = SeedID(s.Name)
	}
	return ids
}

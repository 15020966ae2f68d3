package story

// Sample returns the crossroads adventure new projects start with: a start
// scene with two paths, a treasure clearing, a pit (bad ending) and a
// treasure chest (good ending).
func Sample() *Story {
	s := New()
	scenes := []Scene{
		{
			ID:        "0",
			NumericID: 0,
			Text:      "You are at a crossroads in a dark forest. Two paths stretch before you, one to the left and one to the right. Which way do you go?",
			Choices:   []Choice{{Text: "Go left."}, {Text: "Go right."}},
		},
		{
			ID:        "1",
			NumericID: 1,
			Text:      "The left path leads to a sunlit clearing. In the center sits an ancient treasure chest, its lock long since rusted away.",
			Choices:   []Choice{{Text: "Open the chest."}},
		},
		{
			ID:            "2",
			NumericID:     2,
			Title:         "You Have Died",
			Text:          "The right path conceals a hidden pit. You plummet into the darkness below.",
			IsEnding:      true,
			StartOverText: "'''START OVER'''",
		},
		{
			ID:            "3",
			NumericID:     3,
			Title:         "You Won!",
			Text:          "Inside the chest you find a king's ransom in gold coins, a jeweled crown, and a one-way portal back to civilization. You are rich beyond imagination.",
			IsEnding:      true,
			IsGoodEnding:  true,
			StartOverText: "'''Play again?'''",
		},
	}
	for _, sc := range scenes {
		_ = s.Insert(sc)
	}
	_ = s.AddEdge(Edge{Source: "0", Handle: ChoiceHandle(0), Target: "1"})
	_ = s.AddEdge(Edge{Source: "0", Handle: ChoiceHandle(1), Target: "2"})
	_ = s.AddEdge(Edge{Source: "1", Handle: ChoiceHandle(0), Target: "3"})
	return s
}


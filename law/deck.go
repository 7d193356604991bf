package law

// FullDeck returns the canonical unshuffled deck.
func FullDeck() []Law {
	out := make([]Law, 0, DeckSize)
	for i := 0; i < LiberalCount; i++ {
		out = append(out, Liberal)
	}
	for i := 0; i < FascistCount; i++ {
		out = append(out, Fascist)
	}
	return out
}

// SameMultiset reports whether a and b hold the same laws regardless of order.
func SameMultiset(a, b []Law) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[Law]int, 2)
	for _, l := range a {
		counts[l]++
	}
	for _, l := range b {
		counts[l]--
		if counts[l] < 0 {
			return false
		}
	}
	return true
}

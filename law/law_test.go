package law

import (
	"encoding/json"
	"math/rand"
	"testing"
)

func TestFullDeck_Composition(t *testing.T) {
	deck := LawList(FullDeck())
	if deck.Count() != DeckSize {
		t.Fatalf("expected %d laws, got %d", DeckSize, deck.Count())
	}
	if got := deck.CountOf(Liberal); got != 6 {
		t.Fatalf("expected 6 liberal laws, got %d", got)
	}
	if got := deck.CountOf(Fascist); got != 11 {
		t.Fatalf("expected 11 fascist laws, got %d", got)
	}
}

func TestLawList_PopLawsFromFront(t *testing.T) {
	var ls LawList
	ls.Init([]Law{Fascist, Liberal, Fascist, Liberal})

	got, ok := ls.PopLaws(3)
	if !ok {
		t.Fatalf("expected pop to succeed")
	}
	if got[0] != Fascist || got[1] != Liberal || got[2] != Fascist {
		t.Fatalf("unexpected pop order: %v", got)
	}
	if ls.Count() != 1 || ls[0] != Liberal {
		t.Fatalf("unexpected remainder: %v", ls)
	}
	if _, ok := ls.PopLaws(2); ok {
		t.Fatalf("expected underflow to fail")
	}
}

func TestLawList_PeekDoesNotRemove(t *testing.T) {
	ls := LawList{Liberal, Fascist}
	peek := ls.Peek(3)
	if len(peek) != 2 {
		t.Fatalf("expected peek capped at pile size, got %d", len(peek))
	}
	peek[0] = Fascist
	if ls[0] != Liberal {
		t.Fatalf("peek must return a copy")
	}
}

func TestLawList_ShuffleIsSeeded(t *testing.T) {
	a := LawList(FullDeck())
	b := LawList(FullDeck())
	a.Shuffle(rand.New(rand.NewSource(7)))
	b.Shuffle(rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical shuffle for identical seed at %d", i)
		}
	}
}

func TestSameMultiset(t *testing.T) {
	if !SameMultiset([]Law{Fascist, Liberal, Fascist}, []Law{Fascist, Fascist, Liberal}) {
		t.Fatalf("expected reordering to match")
	}
	if SameMultiset([]Law{Fascist, Liberal}, []Law{Fascist, Fascist}) {
		t.Fatalf("expected different counts to mismatch")
	}
}

func TestLaw_JSON(t *testing.T) {
	raw, err := json.Marshal([]Law{Liberal, Fascist})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if string(raw) != `["Liberal","Fascist"]` {
		t.Fatalf("unexpected json: %s", raw)
	}
	var back []Law
	if err := json.Unmarshal([]byte(`["fascist","L"]`), &back); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if back[0] != Fascist || back[1] != Liberal {
		t.Fatalf("unexpected decode: %v", back)
	}
	if err := json.Unmarshal([]byte(`"Monarchist"`), new(Law)); err == nil {
		t.Fatalf("expected invalid law error")
	}
}

package law

import "math/rand"

type LawList []Law

func (ls *LawList) Init(laws []Law) {
	*ls = make([]Law, len(laws))
	copy(*ls, laws)
}

// Count 获取总张数
func (ls LawList) Count() int {
	return len(ls)
}

func (ls LawList) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(ls), func(i, j int) {
		ls[i], ls[j] = ls[j], ls[i]
	})
}

func (ls *LawList) Add(laws ...Law) {
	*ls = append(*ls, laws...)
}

// PopLaws removes size laws from the front of the pile.
func (ls *LawList) PopLaws(size int) ([]Law, bool) {
	if size < 0 || size > ls.Count() {
		return nil, false
	}
	laws := make([]Law, size)
	copy(laws, (*ls)[:size])
	*ls = (*ls)[size:]
	return laws, true
}

// Peek returns a copy of up to size laws from the front without removing them.
func (ls LawList) Peek(size int) []Law {
	if size > len(ls) {
		size = len(ls)
	}
	if size <= 0 {
		return nil
	}
	out := make([]Law, size)
	copy(out, ls[:size])
	return out
}

// Drain empties the pile and returns what it held.
func (ls *LawList) Drain() []Law {
	out := *ls
	*ls = nil
	return out
}

func (ls LawList) CountOf(l Law) int {
	n := 0
	for _, v := range ls {
		if v == l {
			n++
		}
	}
	return n
}

package tier

import "sort"

// Ranged: ступень с диапазоном тиража. max == nil означает открытый диапазон.
type Ranged interface {
	Range() (min int, max *int)
}

type Resolution[T Ranged] struct {
	Tier T
	// Fallback: тираж не попал ни в один диапазон, взята самая нижняя ступень.
	Fallback bool
}

// Resolve находит ступень для тиража. Ступени перебираются от большего MinQty
// к меньшему; при дыре в диапазонах берётся ступень с наименьшим MinQty.
// ok == false только для пустого списка.
func Resolve[T Ranged](tiers []T, quantity int) (Resolution[T], bool) {
	if len(tiers) == 0 {
		return Resolution[T]{}, false
	}

	sorted := make([]T, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi, _ := sorted[i].Range()
		mj, _ := sorted[j].Range()
		return mi > mj
	})

	for _, t := range sorted {
		minQty, maxQty := t.Range()
		if quantity >= minQty && (maxQty == nil || quantity <= *maxQty) {
			return Resolution[T]{Tier: t}, true
		}
	}

	return Resolution[T]{Tier: sorted[len(sorted)-1], Fallback: true}, true
}

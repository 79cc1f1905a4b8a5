package attnmt

// Scored is an entry in a KBestList.
type Scored[T any] struct {
	Score float64
	Item  T
}

// A KBestList keeps the highest-scoring items it has been
// given, up to a fixed capacity.
//
// Items are always sorted by non-increasing score.
// Among equal scores, later additions come first.
type KBestList[T any] struct {
	MaxSize int

	items []Scored[T]
}

// NewKBestList creates an empty list with the given
// capacity.
func NewKBestList[T any](maxSize int) *KBestList[T] {
	if maxSize < 1 {
		panic("k-best list capacity must be positive")
	}
	return &KBestList[T]{MaxSize: maxSize}
}

// Add inserts an item and reports whether it was kept.
func (k *KBestList[T]) Add(score float64, item T) bool {
	entry := Scored[T]{Score: score, Item: item}
	if len(k.items) == 0 {
		k.items = append(k.items, entry)
		return true
	}

	if score < k.items[len(k.items)-1].Score {
		if len(k.items) == k.MaxSize {
			return false
		}
		k.items = append(k.items, entry)
		return true
	}

	// There is at least one item no better than the new one.
	idx := 0
	for idx < len(k.items) && k.items[idx].Score > score {
		idx++
	}
	k.items = append(k.items, Scored[T]{})
	copy(k.items[idx+1:], k.items[idx:])
	k.items[idx] = entry
	if len(k.items) > k.MaxSize {
		k.items = k.items[:k.MaxSize]
	}
	return true
}

// Len returns the number of kept items.
func (k *KBestList[T]) Len() int {
	return len(k.items)
}

// Items returns a copy of the kept items, best first.
func (k *KBestList[T]) Items() []Scored[T] {
	res := make([]Scored[T], len(k.items))
	copy(res, k.items)
	return res
}

// Best returns the highest-scoring item.
// The second return value is false if the list is empty.
func (k *KBestList[T]) Best() (Scored[T], bool) {
	if len(k.items) == 0 {
		return Scored[T]{}, false
	}
	return k.items[0], true
}

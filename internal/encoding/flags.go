package encoding

// Flag is any bitmask-style field value.
type Flag interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Union ORs the chosen flags together. Duplicates collapse, an empty
// selection yields zero.
func Union[T Flag](chosen []T) T {
	var v T
	for _, f := range chosen {
		v |= f
	}
	return v
}

// Subset picks count values from set with replacement using pick to choose
// indices. pick(n) must return a value in [0, n).
func Subset[T any](set []T, count int, pick func(n int) int) []T {
	if len(set) == 0 || count <= 0 {
		return nil
	}
	out := make([]T, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, set[pick(len(set))])
	}
	return out
}

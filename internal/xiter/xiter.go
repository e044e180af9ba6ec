package xiter

import "iter"

// Unique collects the distinct values of seq in first-seen order. An empty
// sequence yields nil.
func Unique[T comparable](seq iter.Seq[T]) []T {
	seen := make(map[T]struct{})
	var out []T
	for v := range seq {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

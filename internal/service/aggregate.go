package service

// GroupBy buckets items by key, preserving input order inside each bucket.
func GroupBy[T any, K comparable](items []T, key func(T) K) map[K][]T {
	out := make(map[K][]T)
	for _, it := range items {
		k := key(it)
		out[k] = append(out[k], it)
	}
	return out
}

// Pluck collects a field from every item.
func Pluck[T any, V any](items []T, field func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, it := range items {
		out = append(out, field(it))
	}
	return out
}

// orEmpty returns an empty slice for nil so JSON renders [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

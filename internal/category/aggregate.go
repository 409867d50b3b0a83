package category

// Categorized is anything that belongs to exactly one category.
type Categorized interface {
	CategoryOf() Category
}

type Group[T Categorized] struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Items    []T      `json:"items"`
}

// GroupBy partitions items by category in canonical order. Empty groups are
// omitted and items with an unrecognized category are dropped.
func GroupBy[T Categorized](items []T) []Group[T] {
	buckets := make(map[Category][]T, len(canonical))
	for _, item := range items {
		c := item.CategoryOf()
		if !c.Valid() {
			continue
		}
		buckets[c] = append(buckets[c], item)
	}

	groups := make([]Group[T], 0, len(buckets))
	for _, c := range canonical {
		if len(buckets[c]) == 0 {
			continue
		}
		groups = append(groups, Group[T]{Category: c, Label: c.Label(), Items: buckets[c]})
	}
	return groups
}

func Count[T Categorized](items []T, c Category) int {
	n := 0
	for _, item := range items {
		if item.CategoryOf() == c {
			n++
		}
	}
	return n
}

// Counts returns a count for every known category, zeros included, so
// filter chips can render a stable set.
func Counts[T Categorized](items []T) map[Category]int {
	counts := make(map[Category]int, len(canonical))
	for _, c := range canonical {
		counts[c] = 0
	}
	for _, item := range items {
		if c := item.CategoryOf(); c.Valid() {
			counts[c]++
		}
	}
	return counts
}

// Filter keeps the items of category c; the "all" category keeps everything.
func Filter[T Categorized](items []T, c Category) []T {
	if c.IsAll() {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.CategoryOf() == c {
			out = append(out, item)
		}
	}
	return out
}

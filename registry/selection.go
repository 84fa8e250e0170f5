package registry

// Selection tracks which registered tests are marked to run. Marking
// is idempotent: a test selected by several patterns runs once.
type Selection struct {
	marked []bool
	count  int
}

// NewSelection creates an empty selection over a registry of size n.
func NewSelection(n int) *Selection {
	return &Selection{marked: make([]bool, n)}
}

// Mark adds the test at position i to the selection.
func (s *Selection) Mark(i int) {
	if !s.marked[i] {
		s.marked[i] = true
		s.count++
	}
}

// Marked reports whether the test at position i is selected.
func (s *Selection) Marked(i int) bool {
	return s.marked[i]
}

// Count returns the number of distinct selected tests.
func (s *Selection) Count() int {
	return s.count
}

// Effective returns the positions of the tests to execute, in
// registration order. With skip unset that is the selection, or the
// whole registry when nothing was selected. With skip set it is the
// complement of the selection.
func (s *Selection) Effective(skip bool) []int {
	runAll := !skip && s.count == 0
	out := make([]int, 0, len(s.marked))
	for i, m := range s.marked {
		if runAll || m != skip {
			out = append(out, i)
		}
	}
	return out
}

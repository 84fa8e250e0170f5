package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

func noop(types.Recorder) {}

func makeCases(names ...string) []types.TestCase {
	cases := make([]types.TestCase, len(names))
	for i, name := range names {
		cases[i] = types.TestCase{Name: name, Entry: noop}
	}
	return cases
}

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name    string
		cases   []types.TestCase
		wantErr string
	}{
		{
			name:  "valid registry",
			cases: makeCases("alpha", "beta"),
		},
		{
			name:  "empty registry",
			cases: nil,
		},
		{
			name:    "duplicate name",
			cases:   makeCases("alpha", "alpha"),
			wantErr: "duplicate test name",
		},
		{
			name:    "empty name",
			cases:   makeCases("alpha", ""),
			wantErr: "empty name",
		},
		{
			name:    "nil function",
			cases:   []types.TestCase{{Name: "alpha"}},
			wantErr: "nil function",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := New(tt.cases)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.cases), reg.Len())
		})
	}
}

func TestRegistryPreservesOrder(t *testing.T) {
	reg, err := New(makeCases("c", "a", "b"))
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b"}, reg.Names())

	i, ok := reg.IndexOf("a")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, "a", reg.Case(1).Name)

	_, ok = reg.IndexOf("missing")
	assert.False(t, ok)
}

func TestSelectionMarkIsIdempotent(t *testing.T) {
	sel := NewSelection(3)
	sel.Mark(1)
	sel.Mark(1)

	assert.Equal(t, 1, sel.Count())
	assert.True(t, sel.Marked(1))
	assert.False(t, sel.Marked(0))
}

func TestSelectionEffective(t *testing.T) {
	tests := []struct {
		name string
		mark []int
		skip bool
		want []int
	}{
		{
			name: "nothing selected runs everything",
			want: []int{0, 1, 2, 3},
		},
		{
			name: "selection in registration order",
			mark: []int{3, 1},
			want: []int{1, 3},
		},
		{
			name: "skip inverts the selection",
			mark: []int{0, 2},
			skip: true,
			want: []int{1, 3},
		},
		{
			name: "skip with nothing selected runs everything",
			skip: true,
			want: []int{0, 1, 2, 3},
		},
		{
			name: "skip everything runs nothing",
			mark: []int{0, 1, 2, 3},
			skip: true,
			want: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewSelection(4)
			for _, i := range tt.mark {
				sel.Mark(i)
			}
			assert.Equal(t, tt.want, sel.Effective(tt.skip))
		})
	}
}

func TestSkipPartitionsTheRegistry(t *testing.T) {
	// Running with a pattern and running with the same pattern under
	// skip must cover every registered test exactly once.
	reg, err := New(makeCases("net-dial", "net-listen", "fs-read"))
	require.NoError(t, err)

	markFor := func() *Selection {
		sel := NewSelection(reg.Len())
		n := NewResolver(reg, sel).Resolve("net")
		require.Equal(t, 2, n)
		return sel
	}

	run := markFor().Effective(false)
	skipped := markFor().Effective(true)

	seen := make(map[int]int)
	for _, i := range run {
		seen[i]++
	}
	for _, i := range skipped {
		seen[i]++
	}
	for i := 0; i < reg.Len(); i++ {
		assert.Equal(t, 1, seen[i], "test %d must appear in exactly one half", i)
	}
}

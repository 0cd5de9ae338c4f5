package comments

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flat(id, parent int64) *Comment {
	return &Comment{ID: id, ParentID: parent, Text: "comment"}
}

func rootIDs(f *Forest) []int64 {
	ids := make([]int64, 0)
	for _, n := range f.Roots() {
		ids = append(ids, n.Comment().ID)
	}
	return ids
}

func TestBuildForest_Nesting(t *testing.T) {
	// 1            (top-level)
	// ├── 2
	// │   └── 4
	// └── 5
	// 3            (top-level)
	input := []*Comment{
		flat(1, 0), flat(2, 1), flat(3, 0), flat(4, 2), flat(5, 1),
	}

	f := BuildForest(input)
	require.Equal(t, 5, f.Len())
	assert.Equal(t, []int64{1, 3}, rootIDs(f))

	first := f.Roots()[0]
	children := first.Children()
	require.Len(t, children, 2)
	assert.Equal(t, int64(2), children[0].Comment().ID)
	assert.Equal(t, int64(5), children[1].Comment().ID)

	grandchildren := children[0].Children()
	require.Len(t, grandchildren, 1)
	assert.Equal(t, int64(4), grandchildren[0].Comment().ID)

	assert.Equal(t, 0, first.Depth())
	assert.Equal(t, 1, children[0].Depth())
	assert.Equal(t, 2, grandchildren[0].Depth())
}

func TestBuildForest_OrphansSurfaceFirst(t *testing.T) {
	// 7 replies to id 99 which is not part of the input.
	input := []*Comment{
		flat(1, 0), flat(7, 99), flat(2, 0),
	}

	f := BuildForest(input)
	assert.Equal(t, []int64{7, 1, 2}, rootIDs(f))
	assert.Equal(t, 0, f.Roots()[0].Depth())
}

func TestBuildForest_EmptyAndNilInput(t *testing.T) {
	f := BuildForest(nil)
	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.Roots())

	f = BuildForest([]*Comment{nil, flat(1, 0), nil})
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, []int64{1}, rootIDs(f))
}

func TestBuildForest_PreservesInputOrderWithinLevels(t *testing.T) {
	input := []*Comment{
		flat(3, 0), flat(1, 0), flat(2, 0),
		flat(10, 3), flat(11, 3), flat(12, 3),
	}

	f := BuildForest(input)
	assert.Equal(t, []int64{3, 1, 2}, rootIDs(f))

	replies := f.Roots()[0].Children()
	got := make([]int64, len(replies))
	for i, n := range replies {
		got[i] = n.Comment().ID
	}
	assert.Equal(t, []int64{10, 11, 12}, got)
}

func TestWalk_HookOrder(t *testing.T) {
	input := []*Comment{
		flat(1, 0), flat(2, 1), flat(3, 0),
	}
	f := BuildForest(input)

	var trace []string
	f.Walk(Walker{
		EnterComment: func(n Node, depth int) {
			trace = append(trace, fmt.Sprintf("enter:%d", n.Comment().ID))
		},
		ExitComment: func(n Node, depth int) {
			trace = append(trace, fmt.Sprintf("exit:%d", n.Comment().ID))
		},
		EnterLevel: func(depth int) {
			trace = append(trace, "open")
		},
		ExitLevel: func(depth int) {
			trace = append(trace, "close")
		},
	})

	joined := strings.Join(trace, " ")
	assert.Equal(t, "enter:1 open enter:2 exit:2 close exit:1 enter:3 exit:3", joined)
}

func TestWalk_NilHooksAreSkipped(t *testing.T) {
	f := BuildForest([]*Comment{flat(1, 0), flat(2, 1)})

	var entered int
	assert.NotPanics(t, func() {
		f.Walk(Walker{EnterComment: func(Node, int) { entered++ }})
	})
	assert.Equal(t, 2, entered)
}

func TestAll_DepthFirstAndRestartable(t *testing.T) {
	input := []*Comment{
		flat(1, 0), flat(2, 1), flat(4, 2), flat(3, 0),
	}
	f := BuildForest(input)

	collect := func() ([]int64, []int) {
		var ids []int64
		var depths []int
		for n, depth := range f.All() {
			ids = append(ids, n.Comment().ID)
			depths = append(depths, depth)
		}
		return ids, depths
	}

	ids, depths := collect()
	assert.Equal(t, []int64{1, 2, 4, 3}, ids)
	assert.Equal(t, []int{0, 1, 2, 0}, depths)

	// Ranging again yields the identical sequence.
	again, _ := collect()
	assert.Equal(t, ids, again)
}

func TestAll_EarlyBreak(t *testing.T) {
	f := BuildForest([]*Comment{flat(1, 0), flat(2, 1), flat(3, 0)})

	var seen []int64
	for n := range f.All() {
		seen = append(seen, n.Comment().ID)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int64{1, 2}, seen)
}

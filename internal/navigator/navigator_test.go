package navigator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMod(t *testing.T) {
	table := []struct{ n, m, want int }{
		{5, 12, 5},
		{12, 5, 2},
		{-5, 12, 7},
		{12, -5, -3},
		{240, 13, 6},
		{8, -3, -1},
		{7, 0, 0},
		{-7, 0, 0},
	}

	for _, tt := range table {
		t.Run(fmt.Sprintf("%d mod %d", tt.n, tt.m), func(t *testing.T) {
			assert.Equal(t, tt.want, Mod(tt.n, tt.m))
		})
	}
}

func TestModStaysInRangeForPositiveDivisor(t *testing.T) {
	for m := 1; m <= 7; m++ {
		for n := -50; n <= 50; n++ {
			got := Mod(n, m)
			require.GreaterOrEqual(t, got, 0, "Mod(%d,%d)", n, m)
			require.Less(t, got, m, "Mod(%d,%d)", n, m)
		}
	}
}

func TestInputSlotDownCycle(t *testing.T) {
	n := New(WrapInputSlot)
	n.Reset(3)
	require.Equal(t, 3, n.Index())
	require.True(t, n.AtSentinel())

	var seen []int
	for i := 0; i < 8; i++ {
		_, next := n.Navigate(DirectionDown)
		seen = append(seen, next)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 0, 1, 2, 3}, seen)
}

func TestInputSlotUpCycle(t *testing.T) {
	n := New(WrapInputSlot)
	n.Reset(3)

	var seen []int
	for i := 0; i < 4; i++ {
		_, next := n.Navigate(DirectionUp)
		seen = append(seen, next)
	}
	assert.Equal(t, []int{2, 1, 0, 3}, seen)
}

func TestInputSlotLastItemWrapsToSentinel(t *testing.T) {
	n := New(WrapInputSlot)
	n.Reset(3)

	n.Navigate(DirectionDown)
	require.Equal(t, 0, n.Index())
	n.Navigate(DirectionDown)
	n.Navigate(DirectionDown)
	require.Equal(t, 2, n.Index())

	n.Navigate(DirectionDown)
	assert.True(t, n.AtSentinel())
	assert.False(t, n.Target().OnItem)
}

func TestListOnlyCycle(t *testing.T) {
	n := New(WrapListOnly)
	n.Reset(3)
	require.Equal(t, -1, n.Index())

	var down []int
	for i := 0; i < 5; i++ {
		_, next := n.Navigate(DirectionDown)
		down = append(down, next)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1}, down)

	n.Reset(3)
	var up []int
	for i := 0; i < 4; i++ {
		_, next := n.Navigate(DirectionUp)
		up = append(up, next)
	}
	assert.Equal(t, []int{2, 1, 0, 2}, up)
}

func TestEmptyListStaysAtSentinel(t *testing.T) {
	for _, mode := range []WrapMode{WrapInputSlot, WrapListOnly} {
		t.Run(string(mode), func(t *testing.T) {
			n := New(mode)
			n.Reset(0)
			for i := 0; i < 3; i++ {
				n.Navigate(DirectionDown)
				assert.True(t, n.AtSentinel())
				n.Navigate(DirectionUp)
				assert.True(t, n.AtSentinel())
			}
			assert.False(t, n.Target().OnItem)
		})
	}
}

func TestIndexNeverLeavesBounds(t *testing.T) {
	for _, mode := range []WrapMode{WrapInputSlot, WrapListOnly} {
		for length := 0; length <= 4; length++ {
			n := New(mode)
			n.Reset(length)
			moves := []Direction{DirectionDown, DirectionDown, DirectionUp, DirectionDown, DirectionUp, DirectionUp, DirectionUp}
			for _, d := range moves {
				n.Navigate(d)
				target := n.Target()
				if target.OnItem {
					require.GreaterOrEqual(t, target.Item, 0)
					require.Less(t, target.Item, length)
				} else {
					require.True(t, n.AtSentinel(), "mode %s length %d index %d", mode, length, n.Index())
				}
			}
		}
	}
}

func TestResetAfterShrinkingList(t *testing.T) {
	n := New(WrapInputSlot)
	n.Reset(5)
	for i := 0; i < 5; i++ {
		n.Navigate(DirectionDown)
	}
	require.Equal(t, 4, n.Index())

	n.Reset(2)
	assert.Equal(t, 2, n.Index())
	assert.True(t, n.AtSentinel())
}

func TestParseWrapMode(t *testing.T) {
	mode, err := ParseWrapMode("")
	require.NoError(t, err)
	assert.Equal(t, WrapInputSlot, mode)

	mode, err = ParseWrapMode("list-only")
	require.NoError(t, err)
	assert.Equal(t, WrapListOnly, mode)

	_, err = ParseWrapMode("spiral")
	assert.Error(t, err)
}

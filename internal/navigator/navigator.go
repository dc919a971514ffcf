package navigator

// Mod is modulo with the sign of the divisor, so it never goes negative
// for a positive m. Mod(n, 0) is 0 instead of a division fault.
func Mod(n, m int) int {
	if m == 0 {
		return 0
	}
	return ((n % m) + m) % m
}

// Navigator tracks the highlighted index into a result list that is
// replaced wholesale. It never holds an index past the current list.
type Navigator struct {
	mode  WrapMode
	state State
}

// New creates a navigator over an empty list
func New(mode WrapMode) *Navigator {
	if mode == "" {
		mode = WrapInputSlot
	}
	n := &Navigator{mode: mode}
	n.Reset(0)
	return n
}

// Mode returns the wrap convention in use
func (n *Navigator) Mode() WrapMode {
	return n.mode
}

// Index returns the current index, which may be the sentinel
func (n *Navigator) Index() int {
	return n.state.Index
}

// Length returns the length of the list the index refers to
func (n *Navigator) Length() int {
	return n.state.Length
}

// Sentinel is the index meaning "input box focused, no item highlighted"
func (n *Navigator) Sentinel() int {
	if n.mode == WrapListOnly {
		return -1
	}
	return n.state.Length
}

// AtSentinel reports whether no item is highlighted
func (n *Navigator) AtSentinel() bool {
	return n.state.Index == n.Sentinel()
}

// Reset adopts a new list length and moves back to the sentinel
func (n *Navigator) Reset(length int) {
	if length < 0 {
		length = 0
	}
	n.state.Length = length
	n.state.Index = n.Sentinel()
}

// Next computes the index one step in direction without moving
func (n *Navigator) Next(direction Direction) int {
	length := n.state.Length
	if length == 0 {
		return n.Sentinel()
	}

	if n.mode == WrapListOnly {
		if n.AtSentinel() {
			if direction == DirectionUp {
				return length - 1
			}
			return 0
		}
		return Mod(n.state.Index+int(direction), length)
	}

	return Mod(n.state.Index+int(direction), length+1)
}

// Navigate moves one step and returns the old and new index
func (n *Navigator) Navigate(direction Direction) (oldIndex, newIndex int) {
	oldIndex = n.state.Index
	n.state.Index = n.Next(direction)
	return oldIndex, n.state.Index
}

// Target resolves the current index
func (n *Navigator) Target() Target {
	i := n.state.Index
	if i >= 0 && i < n.state.Length {
		return Target{Item: i, OnItem: true}
	}
	return Target{Item: -1}
}

package navigator

import "fmt"

// Direction is the index step applied by an arrow key
type Direction int

const (
	DirectionUp   Direction = -1
	DirectionDown Direction = 1
)

// WrapMode selects how the "input box focused" state takes part in the cycle
type WrapMode string

const (
	// WrapInputSlot cycles over length+1 slots; the last slot is the input box
	WrapInputSlot WrapMode = "input-slot"
	// WrapListOnly cycles over the items only; the input box is a start sentinel
	WrapListOnly WrapMode = "list-only"
)

// ParseWrapMode accepts the config spellings of a WrapMode
func ParseWrapMode(s string) (WrapMode, error) {
	switch WrapMode(s) {
	case "", WrapInputSlot:
		return WrapInputSlot, nil
	case WrapListOnly:
		return WrapListOnly, nil
	default:
		return "", fmt.Errorf("unknown wrap mode %q (want %q or %q)", s, WrapInputSlot, WrapListOnly)
	}
}

// State holds all navigation-related state
type State struct {
	Index  int
	Length int
}

// Target is what the current index resolves to
type Target struct {
	// Item is the highlighted result index, valid when OnItem is true
	Item   int
	OnItem bool
}

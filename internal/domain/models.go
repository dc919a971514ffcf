package domain

// EventKind distinguishes the input-device events that carry query text
type EventKind int

const (
	KindKeystroke EventKind = iota
	KindPaste
)

func (k EventKind) String() string {
	switch k {
	case KindKeystroke:
		return "keystroke"
	case KindPaste:
		return "paste"
	default:
		return "unknown"
	}
}

// Key names used by the engine. They follow the DOM KeyboardEvent.key values
// so every adapter translates its own key codes into the same vocabulary.
const (
	KeyArrowUp   = "ArrowUp"
	KeyArrowDown = "ArrowDown"
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
)

// QueryEvent is a keyup or paste on the input control.
// RawValue is the control value for keystrokes and the clipboard text for
// pastes; nil means the device had nothing to offer.
type QueryEvent struct {
	Kind     EventKind
	Key      string
	RawValue *string
}

// Keystroke builds a keyup event carrying the control value after the key.
func Keystroke(key, value string) QueryEvent {
	return QueryEvent{Kind: KindKeystroke, Key: key, RawValue: &value}
}

// Paste builds a paste event. A nil clipboard means no payload was available.
func Paste(clipboard *string) QueryEvent {
	return QueryEvent{Kind: KindPaste, RawValue: clipboard}
}

// KeyEvent is a host-level keydown used for list navigation
type KeyEvent struct {
	Key string
}

// ClearEvent is the explicit clear-button action
type ClearEvent struct{}

// RefreshEvent asks for cached lookups to be recomputed
type RefreshEvent struct{}

// Focus tells the view which control should own input focus
type Focus int

const (
	FocusInput Focus = iota
	FocusItem
)

func (f Focus) String() string {
	if f == FocusItem {
		return "item"
	}
	return "input"
}

// Snapshot is the immutable view state produced after every handled event
type Snapshot struct {
	Query      string
	Status     Status[[]string]
	Results    []string
	Index      int
	Focus      Focus
	InputValue string
	NoResults  bool
}

// Selected returns the highlighted result, if any
func (s Snapshot) Selected() (string, bool) {
	if s.Focus != FocusItem || s.Index < 0 || s.Index >= len(s.Results) {
		return "", false
	}
	return s.Results[s.Index], true
}

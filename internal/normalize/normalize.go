package normalize

import (
	"strings"

	"github.com/go-logr/logr"

	"typeahead/internal/domain"
)

// QueryLoader reads the last persisted query
type QueryLoader interface {
	LoadQuery() (string, error)
}

// Normalizer turns raw input events into plain query strings
type Normalizer struct {
	stored QueryLoader
	log    logr.Logger
}

// New creates a normalizer. stored may be nil, in which case a paste
// without clipboard text normalizes to "".
func New(stored QueryLoader, log logr.Logger) *Normalizer {
	return &Normalizer{stored: stored, log: log.WithName("normalize")}
}

// Normalize returns the trimmed query carried by ev. It never fails:
// missing values become "".
func (n *Normalizer) Normalize(ev domain.QueryEvent) string {
	switch ev.Kind {
	case domain.KindKeystroke:
		if ev.RawValue == nil {
			return ""
		}
		return strings.TrimSpace(*ev.RawValue)
	case domain.KindPaste:
		if ev.RawValue != nil {
			return strings.TrimSpace(*ev.RawValue)
		}
		return n.fallback()
	default:
		n.log.V(1).Info("ignoring unknown event kind", "kind", ev.Kind)
		return ""
	}
}

// fallback restores the stored query for a paste replayed without payload
func (n *Normalizer) fallback() string {
	if n.stored == nil {
		return ""
	}
	v, err := n.stored.LoadQuery()
	if err != nil {
		n.log.Error(err, "failed to read stored query, using empty value")
		return ""
	}
	return strings.TrimSpace(v)
}

// IsReset reports whether ev is a deletion keystroke
func IsReset(ev domain.QueryEvent) bool {
	if ev.Kind != domain.KindKeystroke {
		return false
	}
	return ev.Key == domain.KeyBackspace || ev.Key == domain.KeyDelete
}

package ui

import (
	"github.com/atotto/clipboard"
	"github.com/go-logr/logr"
)

// Clipboard reads the system clipboard. Read returns nil when nothing can
// be read, which the engine treats as a paste without payload.
type Clipboard interface {
	Read() *string
}

// ClipboardFunc adapts a function to Clipboard
type ClipboardFunc func() *string

func (f ClipboardFunc) Read() *string { return f() }

type systemClipboard struct {
	log logr.Logger
}

// NewSystemClipboard returns the OS clipboard
func NewSystemClipboard(log logr.Logger) Clipboard {
	return systemClipboard{log: log.WithName("clipboard")}
}

func (c systemClipboard) Read() *string {
	if clipboard.Unsupported {
		c.log.V(1).Info("clipboard unsupported on this system")
		return nil
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		c.log.Error(err, "failed to read clipboard")
		return nil
	}
	return &text
}

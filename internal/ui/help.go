package ui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// renderHelpContent renders the full key reference shown in the pager
func renderHelpContent(k keyMap) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(14)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("Typeahead Help"))
	help.WriteString("\n")

	sections := []struct {
		name     string
		bindings []struct{ keys, desc string }
	}{
		{"Search", []struct{ keys, desc string }{
			{"type", "Search as you type; results appear after a short pause"},
			{"backspace", "Clear the list and search the shortened text"},
			{k.Paste.Help().Key, "Paste the clipboard, or restore the last search if it is empty"},
			{k.Clear.Help().Key + ", [x]", "Clear the search box and results"},
			{k.Refresh.Help().Key, "Drop cached results and search again"},
		}},
		{"Results", []struct{ keys, desc string }{
			{"↓, tab", "Next result; wraps around through the search box"},
			{"↑, shift+tab", "Previous result"},
			{"enter", "Open the highlighted result"},
			{"any other key", "Return to the search box"},
		}},
		{"Other", []struct{ keys, desc string }{
			{k.Help.Help().Key, "Show this help"},
			{"esc, ctrl+c", "Quit"},
		}},
	}

	for _, s := range sections {
		help.WriteString(sectionStyle.Render(s.name))
		help.WriteString("\n")
		for _, b := range s.bindings {
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(b.keys), descStyle.Render(b.desc)))
		}
	}
	return strings.TrimRight(help.String(), "\n")
}

// pagerCommand shows text in the ov pager while Bubble Tea has released
// the terminal
type pagerCommand struct {
	content string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (c *pagerCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *pagerCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *pagerCommand) SetStderr(w io.Writer) { c.stderr = w }

func (c *pagerCommand) Run() error {
	root, err := oviewer.NewRoot(strings.NewReader(c.content))
	if err != nil {
		return fmt.Errorf("failed to open pager: %w", err)
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// showHelpPager returns a command that suspends the UI and pages the help
func showHelpPager(content string) tea.Cmd {
	return tea.Exec(&pagerCommand{content: content}, func(err error) tea.Msg {
		return helpPagerMsg{err: err}
	})
}

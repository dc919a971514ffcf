//go:build e2e && unix

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypingShowsSuggestions(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp("--store", "memory"))
	require.True(t, tf.Ready(), "Should show the title")

	require.NoError(t, tf.Type("cata"))
	assert.True(t, tf.SeePlain("catalog"), "Should list the matching word")
	assert.True(t, tf.SeePlain("1 result"), "Should report the result count")

	require.NoError(t, tf.SendKeys(KeyEsc))
	exited, _ := tf.WaitExit(2 * time.Second)
	assert.True(t, exited, "Esc should quit")
}

func TestCommitPrintsRedirectURL(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp("--store", "memory", "--redirect-url", "https://example.com/q/"))
	require.True(t, tf.Ready())

	require.NoError(t, tf.Type("cat"))
	require.True(t, tf.SeePlain("catch"), "Should list suggestions")

	// second suggestion is "catalog"
	require.NoError(t, tf.SendKeys(KeyDown))
	require.NoError(t, tf.SendKeys(KeyDown))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, tf.SendKeys(KeyEnter))

	exited, err := tf.WaitExit(3 * time.Second)
	require.True(t, exited, "Enter on a suggestion should exit")
	require.NoError(t, err)
	assert.True(t, tf.SeePlain("https://example.com/q/947794309"))
}

func TestEnterInInputDoesNotCommit(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp("--store", "memory"))
	require.True(t, tf.Ready())

	require.NoError(t, tf.Type("cat"))
	require.True(t, tf.SeePlain("catalog"))
	require.NoError(t, tf.SendKeys(KeyEnter))

	exited, _ := tf.WaitExit(500 * time.Millisecond)
	assert.False(t, exited, "Enter from the input box should not commit")

	require.NoError(t, tf.SendKeys(KeyCtrlC))
	exited, _ = tf.WaitExit(2 * time.Second)
	assert.True(t, exited)
	assert.NotContains(t, tf.SnapshotPlain(), "stackoverflow.com")
}

func TestStaticBackend(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp("--store", "memory", "--backend", "static"))
	require.True(t, tf.Ready())

	require.NoError(t, tf.Type("x"))
	assert.True(t, tf.OutputContainsPlain("three", 3*time.Second), "The stub backend answers one, two, three")
	require.NoError(t, tf.SendKeys(KeyEsc))
}

func TestClearKey(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp("--store", "memory"))
	require.True(t, tf.Ready())

	require.NoError(t, tf.Type("cata"))
	require.True(t, tf.SeePlain("1 result"))

	before := len(tf.Snapshot())
	require.NoError(t, tf.SendKeys(KeyCtrlL))
	cleared := tf.WaitFor(func(s string) bool {
		if len(s) <= before {
			return false
		}
		return strings.Contains(ansiRe.ReplaceAllString(s[before:], ""), "Search...")
	}, 2*time.Second)
	assert.True(t, cleared, "Clearing should bring back the placeholder")
	require.NoError(t, tf.SendKeys(KeyEsc))
}

func TestLastQueryRestoredOnStart(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	// the default file store lives under the isolated config dir
	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready())
	require.NoError(t, tf.Type("catal"))
	require.True(t, tf.SeePlain("catalog"))
	require.NoError(t, tf.SendKeys(KeyEsc))
	exited, _ := tf.WaitExit(2 * time.Second)
	require.True(t, exited)

	second := NewTUITest(t)
	second.workspace = tf.workspace
	defer second.Cleanup()

	require.NoError(t, second.StartApp())
	require.True(t, second.Ready())
	assert.True(t, second.SeePlain("catalog"), "The stored query should be searched again")
	require.NoError(t, second.SendKeys(KeyEsc))
}

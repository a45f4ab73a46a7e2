package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/weekvote/internal/domain"
)

const author = "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// runCLI executes one command line against a store in dir
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cmd, s := newRootCmd()
	defer s.close()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args,
		"--data-dir", dir,
		"--config", filepath.Join(dir, "weekvote.toml"),
		"--non-interactive",
	))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_Commands(t *testing.T) {
	root := NewRootCmd()

	for _, path := range [][]string{
		{"finalize"},
		{"schedule"},
		{"rewards", "distribute"},
		{"rewards", "list"},
		{"proposals", "list"},
		{"proposals", "show"},
		{"proposals", "create"},
		{"vote"},
		{"winner"},
		{"items", "add"},
		{"version"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	for _, name := range []string{"debug", "non-interactive", "output", "config", "data-dir", "rpc-url"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "weekvote version dev")
}

func TestCommands_LocalStore(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "items", "add", "7", "--title", "Shakshuka", "--author", author)
	require.NoError(t, err)
	assert.Contains(t, out, `Item 7 "Shakshuka" by 0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa saved`)

	out, err = runCLI(t, dir, "proposals", "list")
	require.NoError(t, err)
	assert.Equal(t, "No active proposals\n", out)

	out, err = runCLI(t, dir, "winner", "--week", "2025-W07", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"week": "2025-W07"`)
	assert.Contains(t, out, `"found": false`)

	out, err = runCLI(t, dir, "rewards", "list", "2025-W07")
	require.NoError(t, err)
	assert.Equal(t, "No rewards recorded for 2025-W07\n", out)

	_, err = runCLI(t, dir, "proposals", "show", "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommands_InvalidInput(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{name: "non numeric proposal id", args: []string{"proposals", "show", "abc"}},
		{name: "author is not an address", args: []string{"items", "add", "7", "--title", "x", "--author", "bob"}},
		{name: "vote without tx", args: []string{"vote", "1", "--voter", author}},
		{name: "unknown output format", args: []string{"proposals", "list", "-o", "xml"}},
		{name: "malformed week", args: []string{"winner", "--week", "2025-07"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, dir, tt.args...)
			assert.Error(t, err)
		})
	}
}

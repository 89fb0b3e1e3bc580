package cmd

import (
	"bytes"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCommand(t *testing.T) {
	out := runPageCommand(t, "--team", "PLATFORM")

	assert.True(t, strings.HasPrefix(out, "<!"), "expected the document first, got %q", out[:20])
	assert.Contains(t, out, "PLATFORM")
	assert.Contains(t, out, "We'll be back soon!")
}

func TestPageCommand_IncludeHeaders(t *testing.T) {
	out := runPageCommand(t, "--include-headers")

	head, body, found := strings.Cut(out, "\n\n")
	require.True(t, found)
	assert.Equal(t, "Content-Type: text/html\nPragma: no-cache", head)
	assert.Contains(t, body, "We'll be back soon!")
}

func TestPageCommand_CustomDocument(t *testing.T) {
	documentPath := path.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(documentPath, []byte("<p>Down for upgrades</p>"), 0600))

	out := runPageCommand(t, "--page-path", documentPath)

	assert.Equal(t, "<p>Down for upgrades</p>", out)
}

// Helpers

func runPageCommand(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer

	cmd := newPageCommand().cmd
	registerConfigFlags(cmd.Flags())
	cmd.SetOut(&out)
	cmd.SetArgs(args)

	require.NoError(t, cmd.Execute())
	return out.String()
}

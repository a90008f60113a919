package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requestJSON = `{
  "sheets_data": [{"name": "Sales", "columns": ["Region", "Sales"],
                   "data": [{"Region": "East", "Sales": 100.50}]}],
  "metadata": {"dashboard_name": "Exec"}
}`

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestPromptCommand_Stdin(t *testing.T) {
	out, err := runCLI(t, requestJSON, "prompt", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "Dashboard: Exec")
	assert.Contains(t, out, "East,100.50")
}

func TestPromptCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(requestJSON), 0o600))

	out, err := runCLI(t, "", "prompt", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Sheet: Sales")
}

func TestPromptCommand_InvalidJSON(t *testing.T) {
	_, err := runCLI(t, "{", "prompt")
	assert.ErrorContains(t, err, "invalid request json")
}

func TestLookupCommand_ValidatesBeforeNetwork(t *testing.T) {
	_, err := runCLI(t, "", "lookup", "--server", "https://127.0.0.1:1", "--datasource", "Sales", "--auth", "pat")
	assert.ErrorContains(t, err, "pat_name and pat_secret are required")
}

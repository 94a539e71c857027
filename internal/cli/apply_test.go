package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBatchFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestApply_BatchEndToEnd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")
	batch := writeBatchFile(t, "batch.json", `{
		"messages": [
			{"msg": "added", "id": "a", "fields": {"name": "alpha", "n": 1}},
			{"msg": "added", "id": "b", "fields": {"name": "beta"}},
			{"msg": "changed", "id": "a", "fields": {"n": 5}, "cleared": ["name"]}
		]
	}`)

	out, err := runCommand(t, "--db", db, "--format", "json", "apply", batch)
	require.NoError(t, err, out)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	// Verify final state via get.
	out, err = runCommand(t, "--db", db, "get", "a")
	require.NoError(t, err)
	assert.Equal(t, "a {\"n\":5}\n", out)
}

func TestApply_YAMLBatch(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")
	batch := writeBatchFile(t, "batch.yaml", `
messages:
  - msg: added
    id: a
    fields:
      x: 1
`)

	_, err := runCommand(t, "--db", db, "apply", batch)
	require.NoError(t, err)

	out, err := runCommand(t, "--db", db, "get", "a")
	require.NoError(t, err)
	assert.Equal(t, "a {\"x\":1}\n", out)
}

func TestApply_ResetBatchClearsExisting(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")
	first := writeBatchFile(t, "first.json", `{
		"messages": [
			{"msg": "added", "id": "old1", "fields": {"x": 1}},
			{"msg": "added", "id": "old2", "fields": {"x": 2}}
		]
	}`)
	second := writeBatchFile(t, "second.json", `{
		"reset": true,
		"messages": [{"msg": "added", "id": "new", "fields": {"x": 3}}]
	}`)

	_, err := runCommand(t, "--db", db, "apply", first)
	require.NoError(t, err)
	_, err = runCommand(t, "--db", db, "apply", second)
	require.NoError(t, err)

	out, err := runCommand(t, "--db", db, "dump")
	require.NoError(t, err)
	assert.Equal(t, "new {\"x\":3}\n1 document(s)\n", out)
}

func TestApply_ProtocolViolationFailsWithExitCode(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")
	batch := writeBatchFile(t, "batch.json", `{
		"messages": [{"msg": "removed", "id": "ghost"}]
	}`)

	_, err := runCommand(t, "--db", db, "apply", batch)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestApply_SchemaViolationRejectedBeforeApply(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")
	batch := writeBatchFile(t, "batch.json", `{
		"messages": [{"msg": "exploded", "id": "a"}]
	}`)

	_, err := runCommand(t, "--db", db, "apply", batch)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPutAndGet(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")

	out, err := runCommand(t, "--db", db, "put", "--id", "mine", `{"note": "local"}`)
	require.NoError(t, err)
	assert.Equal(t, "mine\n", out)

	out, err = runCommand(t, "--db", db, "get", "mine")
	require.NoError(t, err)
	assert.Equal(t, "mine {\"note\":\"local\"}\n", out)
}

func TestPut_MintsUUIDWhenNoID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")

	out, err := runCommand(t, "--db", db, "--format", "json", "put", `{"x": 1}`)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["id"])
}

func TestGet_MissingDocument(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")

	_, err := runCommand(t, "--db", db, "get", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestReset_ClearsReplica(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")

	_, err := runCommand(t, "--db", db, "put", "--id", "a", `{"x": 1}`)
	require.NoError(t, err)

	_, err = runCommand(t, "--db", db, "reset")
	require.NoError(t, err)

	out, err := runCommand(t, "--db", db, "dump")
	require.NoError(t, err)
	assert.Equal(t, "0 document(s)\n", out)
}

func TestDiff_ReportsPatch(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")

	_, err := runCommand(t, "--db", db, "put", "--id", "a", `{"x": 1, "y": 2}`)
	require.NoError(t, err)

	proposed := writeBatchFile(t, "proposed.json", `{"x": 1, "y": 3}`)
	out, err := runCommand(t, "--db", db, "diff", "a", proposed)
	require.NoError(t, err)
	assert.Contains(t, out, "/y")
}

func TestDiff_Identical(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replica.db")

	_, err := runCommand(t, "--db", db, "put", "--id", "a", `{"x": 1}`)
	require.NoError(t, err)

	proposed := writeBatchFile(t, "proposed.json", `{"x": 1}`)
	out, err := runCommand(t, "--db", db, "diff", "a", proposed)
	require.NoError(t, err)
	assert.Equal(t, "documents are identical\n", out)
}

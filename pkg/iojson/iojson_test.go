package iojson

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, map[string]any{"id": "a"}))
	require.NoError(t, WriteLine(&buf, map[string]any{"id": "b"}))

	assert.Equal(t, "{\"id\":\"a\"}\n{\"id\":\"b\"}\n", buf.String())
}

func TestWriteLine_MarshalFailure(t *testing.T) {
	var buf bytes.Buffer
	err := WriteLine(&buf, map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, struct {
		Name string `json:"name"`
	}{Name: "x"}))

	assert.Equal(t, "{\n  \"name\": \"x\"\n}\n", out.String())
	assert.Empty(t, errOut.String())

	out.Reset()
	require.NoError(t, WriteWith(&out, &errOut, make(chan int)))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), `"json_error"`)
}

func TestMarshalError(t *testing.T) {
	got := MarshalError("bad \"thing\"", map[string]any{"id": "a"})
	assert.Contains(t, got, `"message": "bad \"thing\""`)
	assert.Contains(t, got, `"id": "a"`)

	assert.NotContains(t, MarshalError("plain", nil), `"data"`)
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteError(&buf, "task not found", map[string]any{"kind": "not_found"}))
	assert.JSONEq(t, `{"message":"task not found","data":{"kind":"not_found"}}`, buf.String())

	buf.Reset()
	require.NoError(t, WriteError(&buf, "broken", map[string]any{"ch": make(chan int)}))
	assert.Contains(t, buf.String(), `"json_error"`)
}

func TestInput_ReadAllFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.md")
	require.NoError(t, os.WriteFile(path, []byte("- [ ] a\n"), 0o600))

	in := &Input{}
	in.fileFlagValue = path

	data, err := in.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "- [ ] a\n", string(data))
}

func TestInput_ReadAllFromStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte("piped"), 0o600))

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	in := &Input{Stdin: f}
	data, err := in.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "piped", string(data))
}

func TestInput_MissingFile(t *testing.T) {
	in := &Input{}
	in.fileFlagValue = filepath.Join(t.TempDir(), "missing")

	_, err := in.ReadAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}

func TestFileReader_Read(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ids":["a","b"]}`), 0o600))

	type payload struct {
		IDs []string `json:"ids"`
	}

	fr := &FileReader[payload]{}
	flag := fr.Flag()
	assert.Equal(t, "file", flag.Name)
	fr.fileFlagValue = path

	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.IDs)
}

func TestFileReader_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

	fr := &FileReader[map[string]any]{}
	fr.fileFlagValue = path

	_, err := fr.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode JSON")
}

package main

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/holmberd/go-urine/encoder"
	"github.com/holmberd/go-urine/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(stdin string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root := newRootCmd()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

const sampleHex = "0100" +
	"1003000000" + // list of 3
	"0601" + // 1
	"0f03000000" + "74776f" + // "two"
	"1401000000" + "0f01000000" + "61" + // {"a": ...
	"18" // null}

func TestEncodeCommand(t *testing.T) {
	t.Run("JSON to hex", func(t *testing.T) {
		out, err := executeCommand(`[1, "two", {"a": null}]`, "encode", "--hex")
		require.NoError(t, err)
		assert.Equal(t, sampleHex+"\n", out)
	})

	t.Run("YAML to hex", func(t *testing.T) {
		out, err := executeCommand("- 1\n- two\n- a: null\n", "encode", "--format", "yaml", "--hex")
		require.NoError(t, err)
		assert.Equal(t, sampleHex+"\n", out)
	})

	t.Run("Raw output from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.json")
		require.NoError(t, os.WriteFile(path, []byte(`300`), 0o600))
		out, err := executeCommand("", "encode", path)
		require.NoError(t, err)
		assert.Equal(t, []byte{encoder.ProtocolMajor, encoder.ProtocolMinor, byte(encoder.TagUint16), 0x2C, 0x01}, []byte(out))
	})

	t.Run("Large JSON integers become bignums", func(t *testing.T) {
		out, err := executeCommand(`18446744073709551616`, "encode")
		require.NoError(t, err)
		v, err := encoder.New().Decode([]byte(out))
		require.NoError(t, err)
		want, _ := new(big.Int).SetString("18446744073709551616", 10)
		got, ok := v.(*big.Int)
		require.True(t, ok, "expected *big.Int, got %T", v)
		assert.Zero(t, want.Cmp(got))
	})

	t.Run("Large YAML integers match JSON", func(t *testing.T) {
		fromJSON, err := executeCommand(`{"x": 99999999999999999999, "y": -5}`, "encode", "--hex")
		require.NoError(t, err)
		fromYAML, err := executeCommand("x: 99999999999999999999\ny: -5\n", "encode", "--format", "yaml", "--hex")
		require.NoError(t, err)
		assert.Equal(t, fromJSON, fromYAML)

		out, err := executeCommand(strings.TrimSpace(fromYAML), "inspect", "--hex")
		require.NoError(t, err)
		assert.Contains(t, out, "x: 99999999999999999999")
	})

	t.Run("YAML timestamps keep their value", func(t *testing.T) {
		out, err := executeCommand("d: 2024-01-01\n", "encode", "--format", "yaml")
		require.NoError(t, err)

		enc := encoder.New()
		require.NoError(t, encoder.Register[time.Time](enc, encoder.TimeExtension{}))
		v, err := enc.Decode([]byte(out))
		require.NoError(t, err)
		m, ok := v.(map[any]any)
		require.True(t, ok, "expected map[any]any, got %T", v)
		got, ok := m["d"].(time.Time)
		require.True(t, ok, "expected time.Time, got %T", m["d"])
		assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got))

		out, err = executeCommand(hex.EncodeToString([]byte(out)), "inspect", "--hex")
		require.NoError(t, err)
		assert.Contains(t, out, "2024-01-01T00:00:00Z")
		assert.NotContains(t, out, "!class")
	})

	t.Run("YAML aliases and merge keys", func(t *testing.T) {
		doc := "base: &b {a: 1, b: 2}\nchild:\n  <<: *b\n  b: 3\n"
		got, err := parseDocument(formatYAML, []byte(doc))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"base":  map[string]any{"a": 1, "b": 2},
			"child": map[string]any{"a": 1, "b": 3},
		}, got)
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, err := executeCommand(`[1,`, "encode")
		assert.Error(t, err)
		_, err = executeCommand(`1`, "encode", "--format", "toml")
		assert.Error(t, err)
	})
}

func TestInspectCommand(t *testing.T) {
	t.Run("Hex input", func(t *testing.T) {
		out, err := executeCommand(sampleHex, "inspect", "--hex")
		require.NoError(t, err)
		assert.Contains(t, out, "- 1")
		assert.Contains(t, out, "- two")
		assert.Contains(t, out, "a: null")
	})

	t.Run("Extended types use local tags", func(t *testing.T) {
		data, err := encoder.New().Encode([]any{encoder.Tuple{1}, encoder.Range{Start: 0, Stop: 3, Step: 1}})
		require.NoError(t, err)
		out, err := executeCommand(hex.EncodeToString(data), "inspect", "--hex")
		require.NoError(t, err)
		assert.Contains(t, out, "!tuple")
		assert.Contains(t, out, "!range")
		assert.Contains(t, out, "stop: 3")
	})

	t.Run("Invalid data", func(t *testing.T) {
		_, err := executeCommand("0200", "inspect", "--hex")
		assert.ErrorIs(t, err, encoder.ErrVersionMismatch)
		_, err = executeCommand("zz", "inspect", "--hex")
		assert.Error(t, err)
	})
}

func TestTagsCommand(t *testing.T) {
	out, err := executeCommand("", "tags")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(encoder.Tags())+1)
	assert.Contains(t, out, "frozenset")
	assert.Contains(t, out, "0x18")
}

func TestPutAndGetCommands(t *testing.T) {
	_, server := testutil.NewRedisClientWithCleanup(t)
	addr := server.Addr()

	out, err := executeCommand(`{"name": "widget", "tags": ["a", "b"]}`,
		"put", "--redis-addr", addr, "--namespace", "cli", "doc", "w1")
	require.NoError(t, err)
	assert.Equal(t, "__cli__:doc:w1\n", out)
	assert.True(t, server.Exists("__cli__:doc:w1"))

	out, err = executeCommand("", "get", "--redis-addr", addr, "--namespace", "cli", "doc", "w1")
	require.NoError(t, err)
	assert.Contains(t, out, "name: widget")
	assert.Contains(t, out, "- a")

	_, err = executeCommand("", "get", "--redis-addr", addr, "--namespace", "cli", "doc", "missing")
	assert.ErrorContains(t, err, "no document stored")

	t.Run("Generated id", func(t *testing.T) {
		out, err := executeCommand("1", "put", "--redis-addr", addr, "doc", "-")
		require.NoError(t, err)
		key := strings.TrimSpace(out)
		assert.True(t, strings.HasPrefix(key, "doc:"))
		assert.True(t, server.Exists(key))
	})

	t.Run("Invalid key", func(t *testing.T) {
		_, err := executeCommand("1", "put", "--redis-addr", addr, "doc", "a:b")
		assert.Error(t, err)
	})
}

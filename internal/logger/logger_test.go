package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKVs_HashesLearnerIDs(t *testing.T) {
	out := sanitizeKVs([]any{"learner_id", "alice", "lesson_id", 3})

	require.Len(t, out, 4)
	assert.Equal(t, "learner_id", out[0])
	hashed, ok := out[1].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(hashed, "hash:"))
	assert.NotContains(t, hashed, "alice")
	assert.Equal(t, 3, out[3])
}

func TestSanitizeKVs_StableHash(t *testing.T) {
	a := sanitizeKVs([]any{"guest_id", "g-1"})
	b := sanitizeKVs([]any{"guest_id", "g-1"})
	assert.Equal(t, a, b)
}

func TestSanitizeKVs_OddLength(t *testing.T) {
	out := sanitizeKVs([]any{"a", 1, "dangling"})
	assert.Equal(t, []any{"a", 1, "dangling"}, out)
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	log, err := New("prod", path)
	require.NoError(t, err)

	log.With("component", "test").Info("hello", "learner_id", "bob")
	log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.NotContains(t, string(data), "bob")
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error("ignored", "k", "v")
	log.With("x", 1).Debug("ignored")
}

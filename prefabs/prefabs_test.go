package prefabs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCleanPaths(t *testing.T) {
	tests := []struct {
		in, graph, script string
	}{
		{"mood", "mood.yaml", "scripts/mood"},
		{"mood.yaml", "mood.yaml", "scripts/mood.yaml"},
		{"prefabs/mood.yml", "mood.yml", "scripts/mood.yml"},
		{"alarmed.tengo", "alarmed.tengo.yaml", "scripts/alarmed.tengo"},
		{"prefabs/scripts/alarmed.tengo", "scripts/alarmed.tengo.yaml", "scripts/alarmed.tengo"},
		{"", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.graph, cleanGraphPath(tc.in))
			assert.Equal(t, tc.script, cleanScriptPath(tc.in))
		})
	}
}

func TestLoadEmbedded(t *testing.T) {
	Dir = t.TempDir()
	t.Cleanup(func() { Dir = "prefabs" })

	data, err := Load("mood")
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: mood")

	script, err := LoadScript("alarmed.tengo")
	require.NoError(t, err)
	assert.Contains(t, string(script), "result")

	_, err = Load("missing")
	assert.Error(t, err)

	_, ok := ModTime("mood")
	assert.False(t, ok, "embedded files have no disk mod time")
}

func TestLoadPrefersDisk(t *testing.T) {
	Dir = t.TempDir()
	t.Cleanup(func() { Dir = "prefabs" })

	require.NoError(t, os.WriteFile(filepath.Join(Dir, "mood.yaml"), []byte("name: override\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(Dir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(Dir, "scripts", "alarmed.tengo"), []byte("result = true\n"), 0o644))

	data, err := Load("mood")
	require.NoError(t, err)
	assert.Equal(t, "name: override\n", string(data))

	script, err := LoadScript("alarmed.tengo")
	require.NoError(t, err)
	assert.Equal(t, "result = true\n", string(script))

	_, ok := ModTime("mood.yaml")
	assert.True(t, ok)
}

func TestWatcherReportsRelevantFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "edge.tengo"), []byte("result = true"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case name := <-w.Events:
			require.False(t, strings.HasSuffix(name, ".txt"), "unexpected event for %s", name)
			if strings.HasSuffix(name, "edge.tengo") {
				require.NoError(t, w.Close())
				return
			}
		case err := <-w.Errors:
			t.Fatalf("watcher error: %v", err)
		case <-deadline:
			t.Fatal("timed out waiting for script change event")
		}
	}
}

func TestWatcherMissingDir(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

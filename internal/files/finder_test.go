package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindSkipsVendorAndHiddenDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "vendor", "dep.go"), "package dep")
	writeFile(t, filepath.Join(root, ".git", "config.go"), "package git")

	found, err := Find(root, nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, filepath.Join(root, "main.go"), found[0])
}

func TestFindHonorsConfigPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.go"), "package keep")
	writeFile(t, filepath.Join(root, "generated", "gen.go"), "package generated")

	found, err := Find(root, []string{"generated/**"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, filepath.Join(root, "keep.go"), found[0])
}

func TestFindHonorsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.go"), "package keep")
	writeFile(t, filepath.Join(root, "skip.go"), "package skip")
	writeFile(t, filepath.Join(root, IgnoreFileName), "skip.go\n# comment\n")

	found, err := Find(root, nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, filepath.Join(root, "keep.go"), found[0])
}

func TestFindOnlyReturnsRegisteredExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "data.bin"), "\x00\x01")

	found, err := Find(root, nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
}

package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arch-sim/simhound/models"
)

func TestPutGetRoundTrip(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "sig.db"))
	require.NoError(t, err)
	defer c.Close()

	ns := Namespace{RepoRoot: "/repo", CommitHash: "abc123"}
	sig := models.MinHashSignature{Values: []uint64{1, 2, 3, 4}}

	require.NoError(t, c.Put(ns, "a.go", "hash1", sig, 10))

	got, ok, err := c.Get(ns, "a.go", "hash1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, sig.Values, got.Values)
	require.False(t, got.Empty)
}

func TestGetMissOnContentHashMismatch(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "sig.db"))
	require.NoError(t, err)
	defer c.Close()

	ns := Namespace{RepoRoot: "/repo", CommitHash: "abc123"}
	sig := models.MinHashSignature{Values: []uint64{1, 2, 3}}
	require.NoError(t, c.Put(ns, "a.go", "hash1", sig, 5))

	_, ok, err := c.Get(ns, "a.go", "hash2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutOverwritesPriorEntryForSamePath(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "sig.db"))
	require.NoError(t, err)
	defer c.Close()

	ns := Namespace{RepoRoot: "/repo", CommitHash: "abc123"}
	require.NoError(t, c.Put(ns, "a.go", "hash1", models.MinHashSignature{Values: []uint64{1}}, 1))
	require.NoError(t, c.Put(ns, "a.go", "hash2", models.MinHashSignature{Values: []uint64{2}}, 2))

	_, ok, err := c.Get(ns, "a.go", "hash1")
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err := c.Get(ns, "a.go", "hash2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []uint64{2}, got.Values)
}

func TestEmptySignatureRoundTrips(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "sig.db"))
	require.NoError(t, err)
	defer c.Close()

	ns := Namespace{RepoRoot: "/repo", CommitHash: "abc123"}
	require.NoError(t, c.Put(ns, "empty.go", "hash1", models.MinHashSignature{Empty: true}, 0))

	got, ok, err := c.Get(ns, "empty.go", "hash1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, got.Empty)
}

func TestClearNamespaceRemovesOnlyThatNamespace(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "sig.db"))
	require.NoError(t, err)
	defer c.Close()

	nsA := Namespace{RepoRoot: "/repoA", CommitHash: "c1"}
	nsB := Namespace{RepoRoot: "/repoB", CommitHash: "c1"}
	require.NoError(t, c.Put(nsA, "a.go", "h", models.MinHashSignature{Values: []uint64{1}}, 1))
	require.NoError(t, c.Put(nsB, "b.go", "h", models.MinHashSignature{Values: []uint64{2}}, 1))

	require.NoError(t, c.ClearNamespace(nsA))

	_, ok, err := c.Get(nsA, "a.go", "h")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = c.Get(nsB, "b.go", "h")
	require.NoError(t, err)
	require.True(t, ok)
}

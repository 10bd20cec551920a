package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/lookout/pkg/storage"
	"github.com/cuemby/lookout/pkg/types"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestExportImport(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	backup := filepath.Join(t.TempDir(), "backup.json")

	store, err := storage.NewBoltStore(src)
	require.NoError(t, err)
	category := types.Category{Name: "Home"}
	require.NoError(t, store.CreateCategory(&category))
	require.NoError(t, store.CreateLink(&types.Link{
		Name:       "NAS",
		URL:        "http://nas.local:5000",
		CategoryID: category.ID,
	}))
	require.NoError(t, store.Close())

	require.NoError(t, run(t, "export", "--data-dir", src, "-o", backup))

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	var doc types.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Categories, 1)
	assert.Len(t, doc.Links, 1)

	require.NoError(t, run(t, "import", "--data-dir", dst, "-f", backup))

	restored, err := storage.NewBoltStore(dst)
	require.NoError(t, err)
	defer restored.Close()

	got, err := restored.Export()
	require.NoError(t, err)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "Home", got.Categories[0].Name)
	require.Len(t, got.Links, 1)
	assert.Equal(t, "http://nas.local:5000", got.Links[0].URL)
}

func TestImportRequiresFile(t *testing.T) {
	err := run(t, "import", "--data-dir", t.TempDir(), "-f", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file is required")
}

func TestTargetsEmptyStore(t *testing.T) {
	assert.NoError(t, run(t, "targets", "--data-dir", t.TempDir()))
}

func TestLoadConfigRejectsBadLogLevel(t *testing.T) {
	err := run(t, "targets", "--data-dir", t.TempDir(), "--log-level", "loud")
	assert.Error(t, err)
	// reset for the following tests
	require.NoError(t, rootCmd.PersistentFlags().Set("log-level", "info"))
}

package importfile_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
	"github.com/tuanvumaihuynh/planner-shop/internal/importfile"
	"github.com/tuanvumaihuynh/planner-shop/internal/storage/disk"
)

const stagingDir = "temp_imports"

func newStore(t *testing.T) (*importfile.Store, string) {
	t.Helper()

	root := t.TempDir()
	d, err := disk.NewLocal(root)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return importfile.NewStore(logger, d, stagingDir), filepath.Join(root, stagingDir)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestStoreStage(t *testing.T) {
	ctx := context.Background()
	store, dir := newStore(t)

	name, err := store.Stage(ctx, strings.NewReader(`{"title":"A"}`))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^import_[0-9a-f]{8}_\d{8}_\d{6}\.json$`), name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, `{"title":"A"}`, string(data))
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create the directory lazily and list nothing", func(t *testing.T) {
		store, dir := newStore(t)

		files, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, files)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Should list json files with content or error marker", func(t *testing.T) {
		store, dir := newStore(t)
		writeFile(t, dir, "a.json", `[{"sku":"A1"}]`)
		writeFile(t, dir, "b.json", `{broken`)
		writeFile(t, dir, "notes.txt", `ignored`)

		files, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, files, 2)

		assert.Equal(t, "a.json", files[0].Filename)
		assert.JSONEq(t, `[{"sku":"A1"}]`, string(files[0].Content))
		assert.Equal(t, int64(14), files[0].Size)
		assert.Empty(t, files[0].Error)

		assert.Equal(t, "b.json", files[1].Filename)
		assert.Nil(t, files[1].Content)
		assert.Contains(t, files[1].Error, "read error")
	})

	t.Run("Should mark files the importer would refuse", func(t *testing.T) {
		store, dir := newStore(t)
		writeFile(t, dir, "latin1.json", "{\"title\":\"caf\xe9\"}")
		writeFile(t, dir, "scalar.json", `42`)

		files, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, files, 2)

		for _, f := range files {
			assert.Nil(t, f.Content, f.Filename)
			assert.Contains(t, f.Error, "read error", f.Filename)
		}
		assert.Contains(t, files[0].Error, "UTF-8")
	})
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should delete an existing file", func(t *testing.T) {
		store, dir := newStore(t)
		writeFile(t, dir, "a.json", `{}`)

		require.NoError(t, store.Delete(ctx, "a.json"))

		_, err := os.Stat(filepath.Join(dir, "a.json"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Should report missing file as not found", func(t *testing.T) {
		store, _ := newStore(t)

		err := store.Delete(ctx, "missing.json")
		assert.ErrorIs(t, err, apperr.ImportFileNotFoundErr)
	})

	t.Run("Should report second delete as not found", func(t *testing.T) {
		store, dir := newStore(t)
		writeFile(t, dir, "a.json", `{}`)

		require.NoError(t, store.Delete(ctx, "a.json"))
		assert.ErrorIs(t, store.Delete(ctx, "a.json"), apperr.ImportFileNotFoundErr)
	})

	t.Run("Should refuse names leaving the staging directory", func(t *testing.T) {
		store, dir := newStore(t)
		writeFile(t, filepath.Dir(dir), "outside.json", `{}`)

		assert.ErrorIs(t, store.Delete(ctx, "../outside.json"), apperr.ImportFileNotFoundErr)
		assert.ErrorIs(t, store.Delete(ctx, ".."), apperr.ImportFileNotFoundErr)

		_, err := os.Stat(filepath.Join(filepath.Dir(dir), "outside.json"))
		assert.NoError(t, err)
	})

	t.Run("Should ignore missing file on remove", func(t *testing.T) {
		store, _ := newStore(t)
		assert.NoError(t, store.Remove(ctx, "missing.json"))
	})
}

func TestStoreDeleteAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Should be informational when the directory is absent", func(t *testing.T) {
		store, _ := newStore(t)

		res, err := store.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Deleted)
		assert.Equal(t, "No files to delete.", res.Message)
	})

	t.Run("Should be informational when the directory is empty", func(t *testing.T) {
		store, dir := newStore(t)
		require.NoError(t, os.MkdirAll(dir, 0o755))

		res, err := store.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Deleted)
		assert.Equal(t, "No files to delete.", res.Message)
	})

	t.Run("Should delete every regular file", func(t *testing.T) {
		store, dir := newStore(t)
		writeFile(t, dir, "a.json", `{}`)
		writeFile(t, dir, "b.txt", `x`)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "keep"), 0o755))

		res, err := store.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Deleted)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "keep", entries[0].Name())
	})
}

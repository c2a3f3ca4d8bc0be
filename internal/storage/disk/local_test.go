package disk_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/planner-shop/internal/storage/disk"
)

func TestLocal(t *testing.T) {
	ctx := context.Background()
	d, err := disk.NewLocal(t.TempDir())
	require.NoError(t, err)

	t.Run("Should put and get a file creating parents", func(t *testing.T) {
		require.NoError(t, d.Put(ctx, "imports/a.json", strings.NewReader(`{"a":1}`)))

		data, err := d.Get(ctx, "imports/a.json")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(data))

		ok, err := d.Exists(ctx, "imports/a.json")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Should report missing file", func(t *testing.T) {
		_, err := d.Get(ctx, "imports/missing.json")
		assert.ErrorIs(t, err, disk.ErrNotExist)

		ok, err := d.Exists(ctx, "imports/missing.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should list only regular files sorted by name", func(t *testing.T) {
		require.NoError(t, d.Put(ctx, "list/b.json", strings.NewReader("bb")))
		require.NoError(t, d.Put(ctx, "list/a.txt", strings.NewReader("a")))
		require.NoError(t, d.MakeDirectory(ctx, "list/sub"))

		files, err := d.Files(ctx, "list")
		require.NoError(t, err)
		assert.Equal(t, []disk.FileInfo{
			{Name: "a.txt", Size: 1},
			{Name: "b.json", Size: 2},
		}, files)
	})

	t.Run("Should delete idempotently", func(t *testing.T) {
		require.NoError(t, d.Put(ctx, "del/x.json", strings.NewReader("x")))
		require.NoError(t, d.Delete(ctx, "del/x.json"))
		require.NoError(t, d.Delete(ctx, "del/x.json"))

		ok, err := d.Exists(ctx, "del/x.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should report directory existence", func(t *testing.T) {
		ok, err := d.DirectoryExists(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, d.MakeDirectory(ctx, "nope"))
		require.NoError(t, d.MakeDirectory(ctx, "nope"))

		ok, err = d.DirectoryExists(ctx, "nope")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Should keep paths inside the root", func(t *testing.T) {
		require.NoError(t, d.Put(ctx, "../escape.json", strings.NewReader("x")))

		_, err := os.Stat(filepath.Join(d.Root(), "escape.json"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(filepath.Dir(d.Root()), "escape.json"))
		assert.True(t, os.IsNotExist(err))
	})
}

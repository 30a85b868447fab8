package filestorage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveOpenDelete(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalFileStorage(dir)
	require.NoError(t, err)
	storage.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }

	path, size, err := storage.Save(strings.NewReader("%PDF-1.4 body"), "Статья.PDF", "papers")
	require.NoError(t, err)
	assert.Equal(t, int64(13), size)
	assert.True(t, strings.HasPrefix(path, "papers/2024/03/09/2024-03-09-"), path)
	assert.True(t, strings.HasSuffix(path, ".pdf"), path)

	f, err := storage.Open(path)
	require.NoError(t, err)
	content, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(content))

	require.NoError(t, storage.Delete(path))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(path)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.Delete(path), "повторное удаление не ошибка")
}

func TestLocalFileStorage_RejectsTraversal(t *testing.T) {
	storage, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	_, err = storage.Open("../../etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideStorage)
	assert.ErrorIs(t, storage.Delete("../secret"), ErrOutsideStorage)
}

package port

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nobletooth/octa/pkg/numlist"
	"github.com/nobletooth/octa/pkg/scan"
	"github.com/nobletooth/octa/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *NumberBackend {
	t.Helper()
	backend, err := NewNumberBackend(storage.NewInMemoryNumberStore())
	require.NoError(t, err)
	return backend
}

// requireDigits asserts the number at `key` has the given digits.
func requireDigits(t *testing.T, backend *NumberBackend, key, expected string) {
	t.Helper()
	digits, err := backend.Digits(key)
	require.NoError(t, err)
	assert.Equal(t, expected, digits)
}

func TestNewNumberBackend(t *testing.T) {
	_, err := NewNumberBackend(nil)
	assert.Error(t, err)
}

func TestNumberBackend(t *testing.T) {
	backend := newTestBackend(t)

	t.Run("set", func(t *testing.T) {
		require.NoError(t, backend.SetDecimal("a", "64"))
		require.NoError(t, backend.SetDecimal("b", "8"))
		assert.ErrorIs(t, backend.SetDecimal("c", "x1"), numlist.ErrFormat)
		requireDigits(t, backend, "a", "100")
	})
	t.Run("missing_key", func(t *testing.T) {
		_, err := backend.Digits("missing")
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)
		_, err = backend.Decimal("c")
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)
		assert.ErrorIs(t, backend.Multiply("dst", "a", "missing"), storage.ErrKeyNotFound)
		_, err = backend.Digits("dst")
		assert.ErrorIs(t, err, storage.ErrKeyNotFound, "A failed derivation stores nothing")
	})
	t.Run("decimal", func(t *testing.T) {
		decimal, err := backend.Decimal("a")
		require.NoError(t, err)
		assert.Equal(t, "64", decimal)
		size, err := backend.Len("a")
		require.NoError(t, err)
		assert.Equal(t, 3, size)
	})
	t.Run("positional", func(t *testing.T) {
		require.NoError(t, backend.Insert("a", 3, 7))
		requireDigits(t, backend, "a", "1007")
		previous, err := backend.Put("a", 1, 5)
		require.NoError(t, err)
		assert.Equal(t, numlist.Digit(0), previous)
		digit, err := backend.Get("a", 1)
		require.NoError(t, err)
		assert.Equal(t, numlist.Digit(5), digit)
		removed, err := backend.RemoveAt("a", 0)
		require.NoError(t, err)
		assert.Equal(t, numlist.Digit(1), removed)
		requireDigits(t, backend, "a", "507")

		_, err = backend.Get("a", 3)
		assert.ErrorIs(t, err, numlist.ErrIndexOutOfRange)
		assert.ErrorIs(t, backend.Insert("a", 0, 8), numlist.ErrFormat)
	})
	t.Run("search", func(t *testing.T) {
		require.NoError(t, backend.SetDecimal("s", "2925")) // 5555 in octal.
		requireDigits(t, backend, "s", "5555")
		index, err := backend.IndexOf("s", 5)
		require.NoError(t, err)
		assert.Equal(t, 0, index)
		index, err = backend.LastIndexOf("s", 5)
		require.NoError(t, err)
		assert.Equal(t, 3, index)
		index, err = backend.IndexOf("s", 1)
		require.NoError(t, err)
		assert.Equal(t, numlist.NotFound, index)
		found, err := backend.Contains("s", 5)
		require.NoError(t, err)
		assert.True(t, found)
		found, err = backend.Contains("s", 5, 1)
		require.NoError(t, err)
		assert.False(t, found)
	})
	t.Run("bulk_remove", func(t *testing.T) {
		require.NoError(t, backend.SetDecimal("r", "342391")) // 1234567 in octal.
		changed, err := backend.RemoveAll("r", 1, 3, 5)
		require.NoError(t, err)
		assert.True(t, changed)
		requireDigits(t, backend, "r", "2467")
		changed, err = backend.RetainAll("r", 2, 4, 6, 7)
		require.NoError(t, err)
		assert.False(t, changed)
		changed, err = backend.RetainAll("r", 6)
		require.NoError(t, err)
		assert.True(t, changed)
		requireDigits(t, backend, "r", "6")
		removed, err := backend.Remove("r", 6)
		require.NoError(t, err)
		assert.True(t, removed)
		requireDigits(t, backend, "r", "0")
	})
	t.Run("reorder", func(t *testing.T) {
		require.NoError(t, backend.SetDecimal("o", "668")) // 1234 in octal.
		swapped, err := backend.Swap("o", 0, 3)
		require.NoError(t, err)
		assert.True(t, swapped)
		requireDigits(t, backend, "o", "4231")
		swapped, err = backend.Swap("o", 0, 4)
		require.NoError(t, err)
		assert.False(t, swapped)
		require.NoError(t, backend.Sort("o", false /*descending*/))
		requireDigits(t, backend, "o", "1234")
		require.NoError(t, backend.Sort("o", true /*descending*/))
		requireDigits(t, backend, "o", "4321")
		require.NoError(t, backend.Shift("o", true /*left*/))
		requireDigits(t, backend, "o", "3214")
		require.NoError(t, backend.Shift("o", false /*left*/))
		requireDigits(t, backend, "o", "4321")
		require.NoError(t, backend.Clear("o"))
		size, err := backend.Len("o")
		require.NoError(t, err)
		assert.Zero(t, size)
	})
	t.Run("derive", func(t *testing.T) {
		require.NoError(t, backend.SetDecimal("x", "8")) // 10 in octal.
		require.NoError(t, backend.Multiply("product", "x", "x"))
		requireDigits(t, backend, "product", "100")
		require.NoError(t, backend.ToBase10("dec", "product"))
		requireDigits(t, backend, "dec", "64")
		require.NoError(t, backend.Range("part", "product", 1, 3))
		requireDigits(t, backend, "part", "00")
		assert.ErrorIs(t, backend.Range("part", "product", 2, 1), numlist.ErrIndexOutOfRange)
		requireDigits(t, backend, "part", "00")
	})
}

func TestNumberBackend_LoadSave(t *testing.T) {
	backend := newTestBackend(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("511\n"), 0o644))

	require.NoError(t, backend.Load("n", in))
	requireDigits(t, backend, "n", "777")
	require.NoError(t, backend.Insert("n", 0, 1))

	out := filepath.Join(dir, "out.txt")
	require.NoError(t, backend.Save("n", out))
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "1023", string(content))

	assert.ErrorIs(t, backend.Load("m", filepath.Join(dir, "missing.txt")), os.ErrNotExist)
	_, err = backend.Digits("m")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestNumberBackend_DumpRestore(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.SetDecimal("a", "123456789"))
	payload, err := backend.Dump("a")
	require.NoError(t, err)

	assert.ErrorIs(t, backend.Restore("a", payload, false /*replace*/), ErrKeyExists)
	require.NoError(t, backend.Restore("b", payload, false /*replace*/))
	require.NoError(t, backend.Restore("a", payload, true /*replace*/))
	decimal, err := backend.Decimal("b")
	require.NoError(t, err)
	assert.Equal(t, "123456789", decimal)

	assert.ErrorIs(t, backend.Restore("c", payload[1:], false /*replace*/), ErrBadPayload)
}

func TestNumberBackend_KeysAndDelete(t *testing.T) {
	backend := newTestBackend(t)
	for _, key := range []string{"num:2", "num:1", "other"} {
		require.NoError(t, backend.SetDecimal(key, "1"))
	}
	keys, err := backend.Keys("num:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"num:1", "num:2"}, keys)
	_, err = backend.Keys("num/*")
	assert.ErrorIs(t, err, scan.ErrInvalidPattern)

	deleted, err := backend.Delete("num:1", "missing", "other")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	keys, err = backend.Keys("*")
	require.NoError(t, err)
	assert.Equal(t, []string{"num:2"}, keys)

	require.NoError(t, backend.Close())
	_, err = backend.Digits("num:2")
	assert.ErrorIs(t, err, storage.ErrStoreClosed)
}

func TestNumberBackend_ConcurrentClients(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.SetDecimal("shared", "0"))
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.NoError(t, backend.Insert("shared", 0, 1))
				_, err := backend.Decimal("shared")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	size, err := backend.Len("shared")
	require.NoError(t, err)
	assert.Equal(t, 801, size)
}

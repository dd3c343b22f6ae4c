package numio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nobletooth/octa/pkg/numlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile puts `content` in a new file under a temporary directory and returns its path.
func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "number.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	for _, testCase := range []struct {
		name     string
		content  string
		expected string // Octal digits.
	}{
		{name: "single line", content: "64", expected: "100"},
		{name: "trailing newline", content: "64\n", expected: "100"},
		{name: "windows newline", content: "8\r\n", expected: "10"},
		{name: "only first line counts", content: "511\nnot a number\n", expected: "777"},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			list, err := Load(writeFile(t, testCase.content))
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, list.String())
		})
	}

	for _, testCase := range []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "blank first line", content: "\n64"},
		{name: "not a number", content: "sixty four"},
		{name: "negative", content: "-64"},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			path := writeFile(t, testCase.content)
			_, err := Load(path)
			assert.ErrorIs(t, err, numlist.ErrFormat)
			assert.Zero(t, LoadOrEmpty(path).Len())
		})
	}

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.txt")
		_, err := Load(path)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.True(t, LoadOrEmpty(path).IsEmpty())
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	list, err := numlist.Parse("123456789")
	require.NoError(t, err)

	require.NoError(t, Save(path, list))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "123456789", string(content))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fileMode, info.Mode().Perm())

	// Overwrite, then read back through Load.
	require.NoError(t, Save(path, numlist.New()))
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0", reloaded.ToDecimalString())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "No temporary files should be left behind")

	t.Run("unwritable directory", func(t *testing.T) {
		err := Save(filepath.Join(dir, "missing", "out.txt"), list)
		assert.Error(t, err)
		assert.Equal(t, "123456789", list.ToDecimalString())
	})
}

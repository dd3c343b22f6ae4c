// Numbers are stored on disk as a single decimal numeral on the first line of a plain text file. Reading converts the
// numeral into an octal digit list; writing renders a digit list back to decimal.

package numio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nobletooth/octa/pkg/numlist"
)

// ReadDecimal returns the first line of the file at `path`, which must be a decimal numeral.
func ReadDecimal(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open numeral file: %w", err)
	}
	defer func() { _ = file.Close() }()

	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read numeral file: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%w: numeral file %s is empty", numlist.ErrFormat, path)
	}
	return line, nil
}

// Load reads the numeral stored at `path` as an octal digit list.
func Load(path string) (*numlist.List, error) {
	decimal, err := ReadDecimal(path)
	if err != nil {
		return nil, err
	}
	list, err := numlist.Parse(decimal)
	if err != nil {
		return nil, fmt.Errorf("failed to parse numeral file %s: %w", path, err)
	}
	return list, nil
}

// LoadOrEmpty is Load for callers that accept an empty list when the file is missing or malformed.
func LoadOrEmpty(path string) *numlist.List {
	list, err := Load(path)
	if err != nil {
		slog.Warn("Failed to load numeral file, using an empty list.", "path", path, "error", err)
		return numlist.New()
	}
	return list
}

// fileMode is the permission of files written by Save.
const fileMode os.FileMode = 0o644

// Save writes the decimal form of `list` to `path`. The file is replaced atomically, so a failed write leaves any
// previous content in place; the list itself is only read.
func Save(path string, list *numlist.List) error {
	temp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create numeral file: %w", err)
	}
	defer func() { _ = os.Remove(temp.Name()) }() // No-op once renamed.

	_, writeErr := temp.WriteString(list.ToDecimalString())
	chmodErr := temp.Chmod(fileMode) // CreateTemp makes owner-only files.
	closeErr := temp.Close()
	if err := errors.Join(writeErr, chmodErr, closeErr); err != nil {
		return fmt.Errorf("failed to write numeral file: %w", err)
	}
	if err := os.Rename(temp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace numeral file: %w", err)
	}
	return nil
}

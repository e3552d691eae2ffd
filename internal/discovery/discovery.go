// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/googol/nupackager/internal/issue"
)

// DefaultPattern matches every binary of the stock family.
const DefaultPattern = "Infragistics*.dll"

var (
	// ErrInvalidPattern is returned when the file pattern is not a valid glob.
	ErrInvalidPattern = errors.New("invalid file pattern")
	// ErrNotDirectory is returned when the scan path exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Find returns the absolute paths of the regular files directly inside dir
// whose base name matches pattern, sorted by name. Matching ignores case and
// subdirectories are never entered.
func Find(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	lowered := strings.ToLower(pattern)
	if strings.ContainsAny(lowered, `/\`) || !doublestar.ValidatePattern(lowered) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		slog.Warn("failed to resolve absolute scan directory, using as-is", "dir", dir, "error", err)
		absDir = dir
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, scanError(absDir, err)
	}

	var found []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ok, matchErr := doublestar.Match(lowered, strings.ToLower(entry.Name()))
		if matchErr != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, matchErr)
		}
		if ok {
			found = append(found, filepath.Join(absDir, entry.Name()))
		}
	}
	slices.Sort(found)

	slog.Debug("discovered modules", "dir", absDir, "pattern", pattern, "count", len(found))
	return found, nil
}

func scanError(dir string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("scan module directory").
		WithResource(dir).
		Wrap(err)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		ctx.WithSuggestion("Check the directory path passed to 'nupackager pack'")
	case errors.Is(err, fs.ErrPermission):
		ctx.WithSuggestion("Make sure the directory is readable by the current user")
	default:
		if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
			ctx.Wrap(fmt.Errorf("%w: %w", ErrNotDirectory, err)).
				WithSuggestion("Pass the directory containing the binaries, not a single file")
		}
	}
	return ctx.BuildError()
}

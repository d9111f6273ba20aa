package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrSymlink is returned for paths that pass through a link.
var ErrSymlink = errors.New("path goes through a symlink")

// RejectSymlinkPath fails when path, or any directory above it that already
// exists, is a symlink or reparse point. Missing trailing components are
// fine; they will be created as plain entries.
func RejectSymlinkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	// Walk up to the root, then check from the top down so the first link
	// reported is the outermost one.
	var chain []string
	for p := abs; ; p = filepath.Dir(p) {
		chain = append(chain, p)
		if filepath.Dir(p) == p {
			break
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		linked, err := isLink(chain[i])
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("inspect %s: %w", chain[i], err)
		}
		if linked {
			return fmt.Errorf("%w: %s (at %s)", ErrSymlink, abs, chain[i])
		}
	}
	return nil
}

func isLink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return true, nil
	}
	return isReparsePoint(path)
}

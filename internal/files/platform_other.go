//go:build !windows

package files

import "os"

// replaceFile is rename(2), atomic within one filesystem.
func replaceFile(from, to string) error {
	return os.Rename(from, to)
}

func isReparsePoint(string) (bool, error) { return false, nil }

// syncDir flushes the directory entry so a rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

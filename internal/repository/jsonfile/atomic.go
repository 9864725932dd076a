package jsonfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// tempWriter writes the serialized store into the temporary file.
type tempWriter func(w io.Writer, data []byte) error

func writeAll(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return err
}

// atomicWriteFile writes data to a temp file next to path and renames it over path.
// path is never replaced unless the temp file was written, synced and closed.
func atomicWriteFile(path string, data []byte, perm os.FileMode, write tempWriter) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	renamed := false
	defer func() {
		_ = tmp.Close()
		if !renamed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(tmp, data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	renamed = true
	return nil
}

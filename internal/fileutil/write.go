package fileutil

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

const filePerms = 0644

type ChangeKind string

const (
	ChangeWrite  ChangeKind = "write"
	ChangeRename ChangeKind = "rename"
)

// Change is one filesystem modification performed (or planned, in dry-run
// mode) by a Writer.
type Change struct {
	Kind ChangeKind `json:"kind"`
	Path string     `json:"path"`
	From string     `json:"from,omitempty"`
}

// Writer performs all document writes of a run. Files are replaced
// atomically, unchanged content is never rewritten, and in dry-run mode
// nothing touches the disk but the changes are still recorded.
type Writer struct {
	dryRun  bool
	changes []Change
}

func NewWriter(dryRun bool) *Writer {
	return &Writer{dryRun: dryRun}
}

func (w *Writer) DryRun() bool {
	return w.dryRun
}

// Changes returns the recorded changes in the order they happened.
func (w *Writer) Changes() []Change {
	out := make([]Change, len(w.changes))
	copy(out, w.changes)
	return out
}

// WriteIfChanged writes data to path unless the file already holds exactly data.
func (w *Writer) WriteIfChanged(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	w.changes = append(w.changes, Change{Kind: ChangeWrite, Path: path})
	if w.dryRun {
		return true, nil
	}
	if err := writeFile(path, data, filePerms); err != nil {
		return false, err
	}
	return true, nil
}

// Replace writes data to newPath and removes oldPath when the two differ.
// The new file is complete on disk before the old one goes away.
func (w *Writer) Replace(oldPath, newPath string, data []byte) error {
	if oldPath == newPath {
		_, err := w.WriteIfChanged(newPath, data)
		return err
	}

	info, err := os.Stat(oldPath)
	if err != nil {
		return err
	}
	w.changes = append(w.changes, Change{Kind: ChangeRename, Path: newPath, From: oldPath})
	if w.dryRun {
		return nil
	}

	if sameFile(oldPath, newPath) {
		// Case-only rename on a case-insensitive filesystem.
		if err := os.Rename(oldPath, newPath); err != nil {
			return err
		}
		return writeFile(newPath, data, info.Mode().Perm())
	}
	if err := writeFile(newPath, data, info.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Remove(oldPath); err != nil {
		return fmt.Errorf("failed to remove %s: %w", oldPath, err)
	}
	return nil
}

func writeFile(path string, data []byte, perm os.FileMode) error {
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	// atomic.WriteFile keeps the mode of a replaced file but leaves new files 0600.
	if isNew {
		if err := os.Chmod(path, perm); err != nil {
			return fmt.Errorf("failed to set permissions on %s: %w", path, err)
		}
	}
	return nil
}

func sameFile(a, b string) bool {
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

func EnsureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

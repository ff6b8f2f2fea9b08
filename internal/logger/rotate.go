package logger

import (
	"os"
	"path/filepath"
	"sync"
)

// rotatingWriter appends to a log file and rotates it once it crosses
// maxBytes: the current file is renamed to <path>.old, replacing any
// previous predecessor, and a fresh file is opened. Exactly one rotated
// predecessor is kept.
type rotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	size     int64
	file     *os.File
}

func newRotatingWriter(path string, maxBytes int64) (*rotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	var size int64
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}

	return &rotatingWriter{
		path:     path,
		maxBytes: maxBytes,
		size:     size,
		file:     f,
	}, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			// Rotation failure must not lose the line; keep writing to
			// the oversized file and try again on the next write.
			n, werr := w.file.Write(p)
			w.size += int64(n)
			if werr != nil {
				return n, werr
			}
			return n, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *rotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}

	if err := os.Rename(w.path, w.path+".old"); err != nil && !os.IsNotExist(err) {
		// Reopen so the writer stays usable even if the rename failed.
		f, oerr := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if oerr != nil {
			return oerr
		}
		w.file = f
		return err
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	w.file = f
	w.size = 0
	return nil
}

// Close closes the underlying file.
func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

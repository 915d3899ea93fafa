package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// logFileWriter appends to a file and keeps only its tail once it grows past
// maxLogSizeBytes.
type logFileWriter struct {
	file    *os.File
	maxSize int64
	keep    int64
	mu      sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{file: file, maxSize: maxLogSizeBytes, keep: keepLogSizeBytes}
	if err := writer.truncateIfNeeded(); err != nil {
		file.Close()
		return nil, nil, err
	}
	return writer, file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= w.maxSize {
		return nil
	}

	buf := make([]byte, w.keep)
	n, err := w.file.ReadAt(buf, size-w.keep)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}

package jsonl

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
)

// Writer appends output events to a JSONL file, one record per line.
// It implements pipeline.BatchLoader.
type Writer struct {
	file    *os.File
	buf     *bufio.Writer
	written int64
}

// NewWriter creates (or truncates) the output file.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &Writer{file: f, buf: bufio.NewWriter(f)}, nil
}

// LoadBatch writes each event's serialized value as one line.
func (w *Writer) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	for _, event := range events {
		if _, err := w.buf.Write(event.Value); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := w.buf.WriteByte('\n'); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		w.written++
	}
	return nil
}

// Written returns the number of records written so far.
func (w *Writer) Written() int64 { return w.written }

// Close flushes buffered records and closes the file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush output file: %w", err)
	}
	return w.file.Close()
}

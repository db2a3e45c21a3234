// Package jsonl adapts the pipeline's extractor and loader ports to
// line-delimited JSON files for the historical backfill mode.
package jsonl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
)

// maxLineSize bounds a single message line; Telegram messages are capped
// well below this. Longer lines are skipped, not fatal.
const maxLineSize = 1 << 20

// Reader extracts raw events from a JSONL file, one message per line.
// It implements pipeline.BatchExtractor and returns io.EOF once drained.
type Reader struct {
	file   *os.File
	buf    *bufio.Reader
	logger *slog.Logger
	path   string
	line   int64
}

// NewReader opens a JSONL file for extraction.
func NewReader(path string, logger *slog.Logger) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	return &Reader{
		file:   f,
		buf:    bufio.NewReaderSize(f, 64*1024),
		logger: logger,
		path:   path,
	}, nil
}

// ExtractBatch reads up to batchSize lines. Empty lines are skipped. The
// line number is recorded as the event offset for error context. Returns
// io.EOF when the file is exhausted and no lines remain.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	batch := make([]domain.RawEvent, 0, batchSize)

	for len(batch) < batchSize {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		line, err := r.nextLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return batch, fmt.Errorf("read %s: %w", r.path, err)
		}
		if len(line) == 0 {
			continue
		}

		batch = append(batch, domain.RawEvent{
			Value:  line,
			Topic:  r.path,
			Offset: r.line,
		})
	}

	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// nextLine returns the next physical line (caller owns the bytes). A line
// exceeding maxLineSize is skipped with a warning so one oversized record
// never aborts the rest of the file.
func (r *Reader) nextLine() ([]byte, error) {
	for {
		r.line++

		line := make([]byte, 0, 256)
		tooLong := false
		for {
			frag, isPrefix, err := r.buf.ReadLine()
			if err != nil {
				return nil, err
			}
			if !tooLong {
				line = append(line, frag...)
				if len(line) > maxLineSize {
					tooLong = true
				}
			}
			if !isPrefix {
				break
			}
		}

		if tooLong {
			r.logger.Warn("skipping oversized line",
				"path", r.path, "line", r.line, "limit_bytes", maxLineSize)
			continue
		}
		return line, nil
	}
}

func (r *Reader) Close() error {
	return r.file.Close()
}

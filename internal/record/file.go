package record

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const maxLineSize = 4 * 1024 * 1024

// FileSource reads one JSON record envelope per line from a file or stdin.
type FileSource struct {
	path    string
	handler Handler
	stdin   io.Reader
}

// NewFileSource creates a file source. Path "-" reads stdin.
func NewFileSource(path string, handler Handler) *FileSource {
	return &FileSource{path: path, handler: handler, stdin: os.Stdin}
}

// Name identifies the source in logs.
func (s *FileSource) Name() string { return "file" }

// Run processes every line until EOF or ctx is done. A failing record is
// logged and skipped; only read errors end the run with an error.
func (s *FileSource) Run(ctx context.Context) error {
	r, closeFn, err := s.open()
	if err != nil {
		return err
	}
	defer closeFn()

	slog.Info("reading records", "source", s.Name(), "path", s.path)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		lineNo++

		line := scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}

		rec, err := DecodeEnvelope(line)
		if err != nil {
			slog.Warn("skipping record", "source", s.Name(), "line", lineNo, "error", err)
			continue
		}
		if err := s.handler.Handle(ctx, rec); err != nil {
			slog.Debug("record failed", "source", s.Name(), "line", lineNo, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	slog.Info("finished reading records", "source", s.Name(), "lines", lineNo)
	return nil
}

func (s *FileSource) open() (io.Reader, func(), error) {
	if s.path == "-" {
		return s.stdin, func() {}, nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open record file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrDumpNotFound is returned when the dump path does not name a regular file.
var ErrDumpNotFound = errors.New("dump file not found")

// MaxLineSize bounds a single dump line in bytes. Longer lines are skipped.
const MaxLineSize = 1024 * 1024

// ReaderSource implements LineSource over any reader. Invalid UTF-8 is
// replaced with U+FFFD and a leading byte order mark is dropped, so a
// damaged dump never aborts a scan.
type ReaderSource struct {
	name    string
	closer  io.Closer
	reader  *bufio.Reader
	lineNum int
}

// NewReaderSource creates a LineSource reading r. The name is reported as
// the Source of every line.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	decoded := transform.NewReader(r, unicode.UTF8BOM.NewDecoder())

	s := &ReaderSource{
		name:   name,
		reader: bufio.NewReaderSize(decoded, 64*1024),
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Next returns the next line. A line longer than MaxLineSize is consumed
// in full and returned with Oversized set and no content.
// Returns io.EOF when the reader is exhausted.
func (s *ReaderSource) Next(ctx context.Context) (*Line, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf []byte
	started := false
	oversized := false
	for {
		chunk, isPrefix, err := s.reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && started {
				break
			}
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("reading %s: %w", s.name, err)
		}
		started = true

		if !oversized {
			if len(buf)+len(chunk) > MaxLineSize {
				oversized = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}

	s.lineNum++
	return &Line{
		Raw:       strings.TrimSuffix(string(buf), "\r"),
		Source:    s.name,
		LineNum:   s.lineNum,
		Oversized: oversized,
	}, nil
}

// Close releases the underlying reader if it is closable.
func (s *ReaderSource) Close() error {
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}

// StatDump checks that path names an existing regular file and returns its size.
func StatDump(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrDumpNotFound, path)
		}
		return 0, fmt.Errorf("checking dump file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s is not a regular file", ErrDumpNotFound, path)
	}
	return info.Size(), nil
}

// FileOpener returns an Opener that opens path afresh on every call.
func FileOpener(path string) Opener {
	return func() (LineSource, error) {
		f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrDumpNotFound, path)
			}
			return nil, fmt.Errorf("opening dump file %s: %w", path, err)
		}
		return NewReaderSource(path, f), nil
	}
}

// StringOpener returns an Opener over in-memory content.
func StringOpener(name, content string) Opener {
	return func() (LineSource, error) {
		return NewReaderSource(name, strings.NewReader(content)), nil
	}
}

// forEachLine drains src, calling fn for every line that fits within
// MaxLineSize. It returns the number of oversized lines skipped.
func forEachLine(ctx context.Context, src LineSource, fn func(*Line)) (int, error) {
	skipped := 0
	for {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return skipped, nil
		}
		if err != nil {
			return skipped, err
		}
		if line.Oversized {
			skipped++
			continue
		}
		fn(line)
	}
}

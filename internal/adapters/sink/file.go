package sink

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/courtside/internal/domain/rating"
)

// Stdout is the path that makes a FileSink write to standard output.
const Stdout = "-"

// FileSink writes tables to local files named by a path template.
type FileSink struct {
	path   string
	format string
	stdout io.Writer

	// mu keeps concurrent tables whole on the shared stdout writer.
	mu sync.Mutex
}

var _ Sink = (*FileSink)(nil)

// NewFileSink returns a sink writing format to files named by path.
func NewFileSink(path, format string) *FileSink {
	return &FileSink{path: path, format: format, stdout: os.Stdout}
}

// Name implements Sink.
func (s *FileSink) Name() string { return "file" }

// Write implements Sink. The file is replaced atomically.
func (s *FileSink) Write(_ context.Context, table *rating.Table) error {
	if table == nil {
		return ErrNilTable
	}
	if s.path == Stdout {
		return s.writeStdout(table)
	}
	path := Expand(s.path, table)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := Encode(tmp, s.format, table); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileSink) writeStdout(table *rating.Table) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s.format, table); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := buf.WriteTo(s.stdout)
	return err
}

// Path returns the file a table would be written to.
func (s *FileSink) Path(table *rating.Table) string {
	if s.path == Stdout {
		return Stdout
	}
	return Expand(s.path, table)
}

// SetStdout redirects writes to the "-" path.
func (s *FileSink) SetStdout(w io.Writer) {
	if w != nil {
		s.mu.Lock()
		s.stdout = w
		s.mu.Unlock()
	}
}

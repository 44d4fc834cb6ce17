package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is the session-start stamp embedded in report filenames.
const TimestampLayout = "2006-01-02_15-04-05"

var ErrAlreadyPersisted = errors.New("report already persisted")

// Buffer accumulates the session's report sections in the order they were
// requested. It is owned by a single session and is not safe for concurrent
// use.
type Buffer struct {
	sb        strings.Builder
	sections  int
	persisted bool
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a section. Sections are separated by a blank line.
func (b *Buffer) Append(section string) {
	if b.sections > 0 {
		b.sb.WriteString("\n")
	}
	b.sb.WriteString(strings.TrimRight(section, "\n"))
	b.sb.WriteString("\n")
	b.sections++
}

func (b *Buffer) String() string {
	return b.sb.String()
}

// Sections reports how many sections were appended.
func (b *Buffer) Sections() int {
	return b.sections
}

// Writer persists buffers under Dir.
type Writer struct {
	Dir    string
	Prefix string
	Ext    string

	create func(path string) (io.WriteCloser, error)
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Prefix: "alert_summary_", Ext: ".txt", create: createExclusive}
}

func createExclusive(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// Path returns the report path for a session started at startedAt.
func (w *Writer) Path(startedAt time.Time) string {
	return filepath.Join(w.Dir, w.Prefix+startedAt.Format(TimestampLayout)+w.Ext)
}

// Persist writes the buffer once. The directory is created if needed and an
// existing report is never overwritten. A report that fails mid-write is
// removed so the session can retry.
func (w *Writer) Persist(b *Buffer, startedAt time.Time) (string, error) {
	if b.persisted {
		return "", ErrAlreadyPersisted
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := w.Path(startedAt)
	create := w.create
	if create == nil {
		create = createExclusive
	}
	f, err := create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if _, err := io.WriteString(f, b.String()); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close report: %w", err)
	}

	b.persisted = true
	return path, nil
}

// Read returns the full text of a persisted report.
func Read(path string) (string, error) {
	if path == "" {
		return "", errors.New("no report path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

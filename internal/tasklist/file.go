package tasklist

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/natefinch/atomic"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
)

const (
	readErrMsg  = "There was a problem trying to read from your file"
	writeErrMsg = "There was a problem trying to save your file"
	fileMode    = 0o600
)

// ReadLines reads r line by line, dropping line terminators.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) //nolint:mnd // allow long lines
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, clierr.Wrap(clierr.IOError, readErrMsg, err)
	}
	return lines, nil
}

// WriteLines writes each line followed by a newline.
func WriteLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return clierr.Wrap(clierr.IOError, writeErrMsg, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return clierr.Wrap(clierr.IOError, writeErrMsg, err)
	}
	return nil
}

// Load reads a list from r.
func Load(r io.Reader) (*List, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return FromLines(lines), nil
}

// Save writes the list to w.
func (l *List) Save(w io.Writer) error {
	return WriteLines(w, l.Lines())
}

// ReadFile loads the list stored at path. A missing file is an empty list.
func ReadFile(path string) (*List, error) {
	f, err := os.Open(path) //nolint:gosec // path from trusted todo dir
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("todo file missing, starting empty", "path", path)
		return New(), nil
	}
	if err != nil {
		return nil, clierr.Wrap(clierr.IOError, readErrMsg, err).
			WithDetails(map[string]any{"path": path})
	}
	defer f.Close()

	l, err := Load(f)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded todo file", "path", path, "tasks", l.Len())
	return l, nil
}

// WriteFile atomically replaces the file at path with the list.
func (l *List) WriteFile(path string) error {
	var sb strings.Builder
	if err := l.Save(&sb); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(sb.String())); err != nil {
		return clierr.Wrap(clierr.IOError, writeErrMsg, err).
			WithDetails(map[string]any{"path": path})
	}
	log.Debug("saved todo file", "path", path, "tasks", l.Len())
	return nil
}

// AppendFile appends the non-blank lines of l to the file at path,
// creating it if needed.
func AppendFile(path string, l *List) error {
	var lines []string
	for _, t := range l.tasks {
		if !t.IsEmpty() {
			lines = append(lines, t.String())
		}
	}
	if len(lines) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode) //nolint:gosec // path from trusted todo dir
	if err != nil {
		return clierr.Wrap(clierr.IOError, writeErrMsg, err).
			WithDetails(map[string]any{"path": path})
	}
	if err := WriteLines(f, lines); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return clierr.Wrap(clierr.IOError, writeErrMsg, err)
	}
	log.Debug("appended tasks", "path", path, "tasks", len(lines))
	return nil
}

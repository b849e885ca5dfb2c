package logging

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"time"
)

// LineInterceptor is an io.Writer that prefixes every complete line with a
// sequence number and a timestamp before passing it to the target.
// Partial lines are held until their newline arrives or Close is called.
type LineInterceptor struct {
	target io.Writer
	now    func() time.Time

	mu  sync.Mutex
	seq uint64
	buf bytes.Buffer
}

func NewLineInterceptor(target io.Writer) *LineInterceptor {
	return &LineInterceptor{target: target, now: time.Now}
}

func (i *LineInterceptor) writeLine(line []byte) error {
	i.seq++
	prefix := slog.Uint64("line", i.seq).String() + " " +
		slog.String("time", i.now().Format(time.RFC3339)).String() + " "

	if _, err := io.WriteString(i.target, prefix); err != nil {
		return err
	}
	_, err := i.target.Write(line)
	return err
}

// Write implements io.Writer. The returned count is len(p) on success.
func (i *LineInterceptor) Write(p []byte) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.buf.Write(p)
	for {
		idx := bytes.IndexByte(i.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := make([]byte, idx+1)
		copy(line, i.buf.Next(idx+1))
		if err := i.writeLine(line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close flushes a trailing partial line, terminating it with a newline.
func (i *LineInterceptor) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.buf.Len() == 0 {
		return nil
	}
	rest := bytes.TrimRight(i.buf.Bytes(), "\r")
	line := append(bytes.Clone(rest), '\n')
	i.buf.Reset()
	return i.writeLine(line)
}

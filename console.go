package ctxlog

import (
	"io"
	"sync"

	"github.com/valyala/bytebufferpool"
)

// Console writes VERBOSE, DEBUG and INFO lines to Out and WARN and ERROR
// lines to Err. Each record is a single Write, serialised across goroutines.
type Console struct {
	Out io.Writer
	Err io.Writer
	mu  sync.Mutex
}

func NewConsole(out, errOut io.Writer) *Console {
	return &Console{Out: out, Err: errOut}
}

func (c *Console) writerFor(s Severity) io.Writer {
	if s >= SeverityWarn {
		return c.Err
	}
	return c.Out
}

// Write emits the formatted line followed by the params, when present.
func (c *Console) Write(rec *Record) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(rec.Line)
	if rec.HasParams {
		_ = buf.WriteByte(' ')
		_, _ = buf.WriteString(rec.ParamsText)
	}
	_ = buf.WriteByte('\n')

	c.write(c.writerFor(rec.Severity), buf.B)
}

// Print writes a raw block to Out.
func (c *Console) Print(text string) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(text)
	if n := buf.Len(); n == 0 || buf.B[n-1] != '\n' {
		_ = buf.WriteByte('\n')
	}
	c.write(c.Out, buf.B)
}

func (c *Console) write(w io.Writer, p []byte) {
	if w == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = w.Write(p)
}

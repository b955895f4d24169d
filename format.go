package ctxlog

import (
	"strings"

	"github.com/fatih/color"
	"github.com/valyala/bytebufferpool"
)

// palette holds the colours used for one service. Colours are forced on
// unless disabled, so captured output carries the same codes as a terminal.
type palette struct {
	instance *color.Color
	call     *color.Color
	levels   map[Severity]*color.Color
}

func newPalette(noColor bool) *palette {
	mk := func(attr color.Attribute) *color.Color {
		c := color.New(attr)
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c
	}

	p := &palette{
		instance: mk(color.FgYellow),
		call:     mk(color.FgCyan),
		levels:   make(map[Severity]*color.Color, 5),
	}
	for s := SeverityVerbose; s <= SeverityError; s++ {
		p.levels[s] = mk(s.colour())
	}
	return p
}

func (p *palette) severity(s Severity) *color.Color {
	if c, ok := p.levels[s]; ok {
		return c
	}
	return p.levels[SeverityInfo]
}

// formatLine renders `<instance groups><call groups> <coloured message>`.
func (p *palette) formatLine(instance, call []string, sev Severity, text string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if len(instance) > 0 {
		_, _ = buf.WriteString(p.instance.Sprint(bracketGroups(instance)))
	}
	if len(call) > 0 {
		_, _ = buf.WriteString(p.call.Sprint(bracketGroups(call)))
	}
	if buf.Len() > 0 {
		_ = buf.WriteByte(' ')
	}
	_, _ = buf.WriteString(p.severity(sev).Sprint(text))
	return buf.String()
}

func bracketGroups(segments []string) string {
	return "[" + strings.Join(segments, "][") + "]"
}

// joinContext is the dotted context label used by the remote sink.
func joinContext(segments []string) string {
	if len(segments) == 0 {
		return "default"
	}
	return strings.Join(segments, ".")
}

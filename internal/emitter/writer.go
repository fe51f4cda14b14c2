// # internal/emitter/writer.go
package emitter

import "strings"

const indentUnit = "    "

// Mark ties a generated line to the source line it was produced from. Both
// are 1-based.
type Mark struct {
	Generated int
	Source    int
}

// Writer is an append-only text sink with indentation. Indentation is
// applied lazily when the first text of a line is printed, so blank lines
// carry no trailing whitespace.
type Writer struct {
	buf       strings.Builder
	depth     int
	lineStart bool
	line      int
	marks     []Mark
}

func New() *Writer {
	return &Writer{lineStart: true, line: 1}
}

// Print appends s. Embedded newlines start new lines at the current
// indentation.
func (w *Writer) Print(s string) {
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			w.write(s)
			return
		}
		w.write(s[:i])
		w.newline()
		s = s[i+1:]
	}
}

func (w *Writer) PrintLn(parts ...string) {
	for _, p := range parts {
		w.Print(p)
	}
	w.newline()
}

// EndLine terminates the current line unless nothing was written to it.
func (w *Writer) EndLine() {
	if !w.lineStart {
		w.newline()
	}
}

func (w *Writer) Indent() { w.depth++ }

func (w *Writer) Unindent() {
	if w.depth > 0 {
		w.depth--
	}
}

// Mark records that the current generated line comes from source line. The
// first mark of a generated line wins.
func (w *Writer) Mark(source int) {
	if source <= 0 {
		return
	}
	if n := len(w.marks); n > 0 && w.marks[n-1].Generated == w.line {
		return
	}
	w.marks = append(w.marks, Mark{Generated: w.line, Source: source})
}

// Line is the 1-based number of the line currently being written.
func (w *Writer) Line() int { return w.line }

func (w *Writer) Marks() []Mark {
	out := make([]Mark, len(w.marks))
	copy(out, w.marks)
	return out
}

func (w *Writer) String() string { return w.buf.String() }
func (w *Writer) Bytes() []byte  { return []byte(w.buf.String()) }

func (w *Writer) write(s string) {
	if s == "" {
		return
	}
	if w.lineStart {
		w.buf.WriteString(strings.Repeat(indentUnit, w.depth))
		w.lineStart = false
	}
	w.buf.WriteString(s)
}

func (w *Writer) newline() {
	w.buf.WriteByte('\n')
	w.lineStart = true
	w.line++
}

// # internal/stacktrace/stacktrace.go
package stacktrace

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"classjs/internal/core/errors"
	"classjs/internal/shared/observability"
	"classjs/internal/sourcemap"
)

// UnknownClass is the declaring type of frames without metadata.
const UnknownClass = "<Unknown class>"

// framePattern matches one stacktrace.js line: "at receiver.member (url)".
var framePattern = regexp.MustCompile(`^\s*at\s*(?:(.+)\.)?(\w+)\s*\((.+)\)$`)

// Frame is one reconstructed stack element.
type Frame struct {
	DeclaringType string
	Member        string
	File          string
	Line          int
}

func (f Frame) String() string {
	if f.Line <= 0 {
		return fmt.Sprintf("%s.%s(%s)", f.DeclaringType, f.Member, f.File)
	}
	return fmt.Sprintf("%s.%s(%s:%d)", f.DeclaringType, f.Member, f.File, f.Line)
}

// Reconstructor maps frames of a generated program back to source
// locations. Artifacts are looked up in root by the URL path of each frame,
// so root plays the part of the web root the program was served from.
type Reconstructor struct {
	root fs.FS
}

func New(root fs.FS) *Reconstructor {
	return &Reconstructor{root: root}
}

// artifacts is what is known about one generated file.
type artifacts struct {
	lines *sourcemap.LineMap
	class string
}

// Reconstruct parses trace, one frame per line separated by sep ("\n" when
// empty). The first line is the error message unless it is itself a frame.
// Trailing blank lines are ignored; any other line that is not a frame
// fails the whole call.
func (r *Reconstructor) Reconstruct(trace, sep string) ([]Frame, error) {
	if sep == "" {
		sep = "\n"
	}
	lines := strings.Split(trace, sep)
	if len(lines) > 0 && !framePattern.MatchString(strings.TrimRight(lines[0], "\r")) {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	seen := make(map[string]*artifacts)
	frames := make([]Frame, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		f, err := r.frame(line, seen)
		if err != nil {
			observability.FramesReconstructedTotal.WithLabelValues("failed").Inc()
			return nil, err
		}
		frames = append(frames, f)
	}
	for _, f := range frames {
		outcome := "resolved"
		if f.DeclaringType == UnknownClass {
			outcome = "unknown"
		}
		observability.FramesReconstructedTotal.WithLabelValues(outcome).Inc()
	}
	return frames, nil
}

func (r *Reconstructor) frame(line string, seen map[string]*artifacts) (Frame, error) {
	m := framePattern.FindStringSubmatch(line)
	if m == nil {
		return Frame{}, malformed(line, "unknown location format", nil)
	}
	member := m[2]

	u, err := url.Parse(strings.TrimSpace(m[3]))
	if err != nil {
		return Frame{}, malformed(line, "invalid frame url", err)
	}
	if u.Scheme == "" {
		return Frame{}, malformed(line, "frame url has no scheme", nil)
	}
	parts := strings.Split(u.Path, ":")
	if len(parts) < 2 {
		return Frame{}, malformed(line, "frame url has no line number", nil)
	}
	jsLine, err := strconv.Atoi(parts[1])
	if err != nil {
		return Frame{}, malformed(line, "invalid line number", err)
	}

	jsPath := parts[0]
	a, ok := seen[jsPath]
	if !ok {
		if a, err = r.load(jsPath); err != nil {
			return Frame{}, err
		}
		seen[jsPath] = a
	}

	base := path.Base(jsPath)
	f := Frame{DeclaringType: UnknownClass, Member: member, File: base, Line: jsLine}
	if a.lines != nil {
		if src, ok := a.lines.SourceLine(jsLine); ok {
			f.Line = src
		}
	}
	if a.class != "" {
		f.DeclaringType = a.class
		f.File = strings.TrimSuffix(base, ".js") + ".java"
	}
	return f, nil
}

// load reads the line map and metadata beside jsPath. Missing artifacts
// are not an error; unreadable or corrupt ones are.
func (r *Reconstructor) load(jsPath string) (*artifacts, error) {
	a := &artifacts{}
	stem, ok := strings.CutSuffix(strings.TrimPrefix(jsPath, "/"), ".js")
	if !ok {
		return a, nil
	}

	data, found, err := r.read(stem + ".map")
	if err != nil {
		return nil, err
	}
	if found {
		if a.lines, err = sourcemap.ParseLineMap(stem+".map", data); err != nil {
			return nil, err
		}
	}

	data, found, err = r.read(stem + ".stjs")
	if err != nil {
		return nil, err
	}
	if found {
		meta, err := sourcemap.ReadMetadata(data)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, stem+".stjs")
		}
		a.class = meta.Class
	}
	return a, nil
}

func (r *Reconstructor) read(name string) ([]byte, bool, error) {
	if r.root == nil || !fs.ValidPath(name) {
		return nil, false, nil
	}
	data, err := fs.ReadFile(r.root, name)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "failed to read artifact"), errors.CtxPath, name)
	}
	return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), true, nil
}

func malformed(line, msg string, err error) error {
	de := &errors.DomainError{Code: errors.CodeMalformedInput, Message: msg, Err: err}
	return de.WithContext(errors.CtxLine, line)
}

// # internal/sourcemap/linemap.go
package sourcemap

import (
	"encoding/json"
	"strings"

	"classjs/internal/core/errors"
	"classjs/internal/emitter"

	gosourcemap "github.com/go-sourcemap/sourcemap"
)

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// sourceColumn is the column every segment points at. Columns are not
// tracked, and the consumer discards segments at the source origin.
const sourceColumn = 1

type document struct {
	Version  int      `json:"version"`
	File     string   `json:"file"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// EncodeLineMap renders marks as a version 3 source map of file (the
// generated unit) against source. Each marked generated line gets one
// segment at column 0. Marks must be in ascending generated order.
func EncodeLineMap(file, source string, marks []emitter.Mark) ([]byte, error) {
	var b strings.Builder
	line := 1
	prevSource := 0
	prevColumn := 0
	for i, m := range marks {
		if m.Generated < line || (i > 0 && m.Generated == line) {
			return nil, errors.Newf(errors.CodeValidationError, "line marks out of order at generated line %d", m.Generated)
		}
		for ; line < m.Generated; line++ {
			b.WriteByte(';')
		}
		writeVLQ(&b, 0)
		writeVLQ(&b, 0)
		writeVLQ(&b, m.Source-1-prevSource)
		writeVLQ(&b, sourceColumn-prevColumn)
		prevSource = m.Source - 1
		prevColumn = sourceColumn
	}

	return json.Marshal(document{
		Version:  3,
		File:     file,
		Sources:  []string{source},
		Names:    []string{},
		Mappings: b.String(),
	})
}

func writeVLQ(b *strings.Builder, n int) {
	v := n << 1
	if n < 0 {
		v = (-n)<<1 | 1
	}
	for {
		digit := v & 31
		v >>= 5
		if v > 0 {
			digit |= 32
		}
		b.WriteByte(base64Digits[digit])
		if v == 0 {
			return
		}
	}
}

// LineMap answers generated-to-source line queries over a parsed map.
type LineMap struct {
	consumer *gosourcemap.Consumer
}

// ParseLineMap decodes a version 3 source map. url is the location the map
// was loaded from and is only used to resolve relative sources.
func ParseLineMap(url string, data []byte) (*LineMap, error) {
	c, err := gosourcemap.Parse(url, data)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeMalformedInput, "invalid line map"), errors.CtxPath, url)
	}
	return &LineMap{consumer: c}, nil
}

// File is the generated unit the map describes.
func (m *LineMap) File() string {
	return m.consumer.File()
}

// SourceLine maps a 1-based generated line to its 1-based source line. An
// unmarked line takes the nearest marked line above it; lines before the
// first mark or past the last one are not mapped.
func (m *LineMap) SourceLine(generated int) (int, bool) {
	_, _, line, _, ok := m.consumer.Source(generated, 0)
	if !ok || line <= 0 {
		return 0, false
	}
	return line, true
}

// # internal/sourcemap/metadata.go
package sourcemap

import (
	"io"

	"classjs/internal/core/errors"

	"github.com/magiconair/properties"
)

// Metadata property keys.
const (
	KeyClass  = "class"
	KeySource = "source"
	KeyJS     = "js"
)

// Metadata describes one generated unit: the qualified name of its first
// top-level class and the locations of the source and generated files.
type Metadata struct {
	Class  string
	Source string
	JS     string
}

func WriteMetadata(w io.Writer, m Metadata) error {
	p := properties.NewProperties()
	p.DisableExpansion = true
	for _, kv := range [][2]string{{KeyClass, m.Class}, {KeySource, m.Source}, {KeyJS, m.JS}} {
		if kv[1] == "" {
			continue
		}
		if _, _, err := p.Set(kv[0], kv[1]); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to set metadata property")
		}
	}
	if _, err := p.Write(w, properties.UTF8); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to write metadata")
	}
	return nil
}

// ReadMetadata parses a metadata file. Missing keys are left empty.
func ReadMetadata(data []byte) (Metadata, error) {
	p := properties.NewProperties()
	p.DisableExpansion = true
	if err := p.Load(data, properties.UTF8); err != nil {
		return Metadata{}, errors.Wrap(err, errors.CodeMalformedInput, "invalid metadata")
	}
	return Metadata{
		Class:  p.GetString(KeyClass, ""),
		Source: p.GetString(KeySource, ""),
		JS:     p.GetString(KeyJS, ""),
	}, nil
}

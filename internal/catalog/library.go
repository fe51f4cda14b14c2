// # internal/catalog/library.go
package catalog

import (
	"io"
	"path/filepath"

	"classjs/internal/core/errors"

	"github.com/BurntSushi/toml"
)

// libraryFile is the on-disk shape of a library catalog:
//
//	[[class]]
//	name = "Global"
//	package = "org.stjs.javascript"
//	global_scope = true
//	[[class.method]]
//	name = "alert"
//	static = true
type libraryFile struct {
	Classes []ClassDescriptor `toml:"class"`
}

// LoadLibrary decodes library descriptors from r.
func LoadLibrary(r io.Reader) ([]ClassDescriptor, error) {
	var f libraryFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode library catalog")
	}
	for i := range f.Classes {
		if f.Classes[i].Name == "" {
			return nil, errors.Newf(errors.CodeValidationError, "library class #%d has no name", i+1)
		}
		if f.Classes[i].Kind == "" {
			f.Classes[i].Kind = KindClass
		}
	}
	return f.Classes, nil
}

// LoadLibraryFiles decodes every file matching the given glob patterns.
func LoadLibraryFiles(patterns []string) ([]ClassDescriptor, error) {
	var out []ClassDescriptor
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "invalid library catalog pattern")
		}
		for _, path := range matches {
			var f libraryFile
			if _, err := toml.DecodeFile(path, &f); err != nil {
				return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "decode library catalog"), errors.CtxPath, path)
			}
			out = append(out, f.Classes...)
		}
	}
	return out, nil
}

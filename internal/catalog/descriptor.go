// # internal/catalog/descriptor.go
package catalog

import (
	"strings"
)

const (
	ObjectClass = "java.lang.Object"
	StringClass = "java.lang.String"

	// Annotation simple names recognised on source and library types.
	AnnotationGlobalScope = "GlobalScope"
	AnnotationDataType    = "DataType"
)

type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
)

type FieldDescriptor struct {
	Name   string `toml:"name"`
	Type   string `toml:"type"`
	Static bool   `toml:"static"`
}

type MethodDescriptor struct {
	Name     string   `toml:"name"`
	Static   bool     `toml:"static"`
	Abstract bool     `toml:"abstract"`
	Native   bool     `toml:"native"`
	Params   []string `toml:"params"`
	Returns  string   `toml:"returns"`
}

// TypeContext is what a compilation unit makes visible when a simple type
// name is resolved: its package, imports and the enclosing classes of the
// reference, innermost first.
type TypeContext struct {
	Package   string
	Imports   []string
	Wildcards []string
	Enclosing []string
}

type ClassDescriptor struct {
	Name        string             `toml:"name"`
	Package     string             `toml:"package"`
	Outer       string             `toml:"outer"`
	Kind        Kind               `toml:"kind"`
	Super       string             `toml:"super"`
	Interfaces  []string           `toml:"interfaces"`
	Annotations []string           `toml:"annotations"`
	GlobalScope bool               `toml:"global_scope"`
	DataType    bool               `toml:"data_type"`
	Anonymous   bool               `toml:"-"`
	Local       bool               `toml:"-"`
	Source      bool               `toml:"-"`
	Fields      []FieldDescriptor  `toml:"field"`
	Methods     []MethodDescriptor `toml:"method"`

	// Context resolves Super and Interfaces when they are not qualified.
	Context TypeContext `toml:"-"`
}

// QualifiedName is the dotted source-level name. Anonymous classes are
// numbered after their enclosing class.
func (d ClassDescriptor) QualifiedName() string {
	switch {
	case d.Anonymous:
		return d.Outer + "$" + d.Name
	case d.Outer != "":
		return d.Outer + "." + d.Name
	case d.Package != "":
		return d.Package + "." + d.Name
	default:
		return d.Name
	}
}

func (d ClassDescriptor) hasAnnotation(simple string) bool {
	for _, a := range d.Annotations {
		if a == simple || strings.HasSuffix(a, "."+simple) {
			return true
		}
	}
	return false
}

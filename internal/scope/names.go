// # internal/scope/names.go
package scope

import "classjs/internal/catalog"

type NameKind uint8

const (
	Identifier NameKind = iota + 1
	Method
	Type
)

func (k NameKind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case Method:
		return "method"
	case Type:
		return "type"
	}
	return "unknown"
}

// QualifiedName is the result of a successful lookup. Owner is the scope
// that answered; nil means a local or parameter. Type is the declared type
// of a variable or field and the return type of a method.
type QualifiedName struct {
	Kind      NameKind
	Owner     Scope
	Name      string
	Static    bool
	Type      string
	Declaring *catalog.Class
}

func (q QualifiedName) IsLocal() bool {
	return q.Owner == nil
}

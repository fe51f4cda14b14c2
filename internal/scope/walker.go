// # internal/scope/walker.go
package scope

import (
	"classjs/internal/ast"
	"classjs/internal/catalog"
	"classjs/internal/core/errors"
)

// Walker pairs a source position with the scope in effect there. It is a
// value: stepping into a declaration returns a new Walker and leaves the
// receiver untouched.
type Walker struct {
	tree  *ast.Tree
	scope Scope
	// at is the source position lookups are made from. The zero value sees
	// every declaration of the current scope chain.
	at ast.Pos
}

func NewWalker(tree *ast.Tree, root *TypeScope) Walker {
	return Walker{tree: tree, scope: root}
}

func (w Walker) Scope() Scope { return w.scope }

// At positions the walker on id without changing scope. Locals and local
// classes declared after id are invisible to lookups made from the result.
func (w Walker) At(id ast.NodeID) Walker {
	if n := w.tree.Node(id); n != nil {
		w.at = n.Pos
	}
	return w
}

// Enter steps into the scope owned by decl. The scope tree must hold a child
// bound to exactly that declaration; anything else is a traversal bug.
func (w Walker) Enter(decl ast.NodeID) (Walker, error) {
	child, ok := w.scope.child(decl)
	if !ok {
		return w, errors.Structural("no scope bound to %s node %d under scope of node %d",
			w.tree.Kind(decl), decl, w.scope.Decl())
	}
	return Walker{tree: w.tree, scope: child}, nil
}

func (w Walker) ResolveIdentifier(name string) (QualifiedName, bool) {
	return w.scope.identifierAt(name, w.at)
}

func (w Walker) ResolveMethod(name string) (QualifiedName, bool) {
	return w.scope.ResolveMethod(name)
}

func (w Walker) ResolveType(name string) (*catalog.Class, bool) {
	return resolveType(w.scope, name, w.at)
}

// ClosestClass returns the innermost enclosing class scope.
func (w Walker) ClosestClass() *ClassScope {
	return Closest(w.scope)
}

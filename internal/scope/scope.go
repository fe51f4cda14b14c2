// # internal/scope/scope.go
package scope

import (
	"classjs/internal/ast"
	"classjs/internal/catalog"
)

// Scope answers the three lookup kinds by simple name. A miss is reported
// through the boolean; implementations delegate to their parent on a miss.
type Scope interface {
	Parent() Scope
	Decl() ast.NodeID
	ResolveIdentifier(name string) (QualifiedName, bool)
	ResolveMethod(name string) (QualifiedName, bool)
	ResolveType(name string) (*catalog.Class, bool)

	// identifierAt resolves name as seen from position at. Locals declared
	// after at are skipped; the zero position sees every declaration.
	identifierAt(name string, at ast.Pos) (QualifiedName, bool)
	child(decl ast.NodeID) (Scope, bool)
	addChild(s Scope)
}

type node struct {
	parent   Scope
	decl     ast.NodeID
	children map[ast.NodeID]Scope
}

func (n *node) Parent() Scope    { return n.parent }
func (n *node) Decl() ast.NodeID { return n.decl }

func (n *node) child(decl ast.NodeID) (Scope, bool) {
	s, ok := n.children[decl]
	return s, ok
}

func (n *node) addChild(s Scope) {
	if n.children == nil {
		n.children = make(map[ast.NodeID]Scope)
	}
	n.children[s.Decl()] = s
}

func (n *node) resolveIdentifierUp(name string, at ast.Pos) (QualifiedName, bool) {
	if n.parent == nil {
		return QualifiedName{}, false
	}
	return n.parent.identifierAt(name, at)
}

func (n *node) resolveMethodUp(name string) (QualifiedName, bool) {
	if n.parent == nil {
		return QualifiedName{}, false
	}
	return n.parent.ResolveMethod(name)
}

// TypeScope is the root of a unit: package, imports and top-level types.
type TypeScope struct {
	node
	catalog *catalog.Catalog
	ctx     catalog.TypeContext
}

func NewTypeScope(cat *catalog.Catalog, ctx catalog.TypeContext) *TypeScope {
	return &TypeScope{node: node{decl: ast.InvalidNode}, catalog: cat, ctx: ctx}
}

func (s *TypeScope) Catalog() *catalog.Catalog { return s.catalog }

func (s *TypeScope) ResolveIdentifier(string) (QualifiedName, bool) {
	return QualifiedName{}, false
}

func (s *TypeScope) identifierAt(string, ast.Pos) (QualifiedName, bool) {
	return QualifiedName{}, false
}

func (s *TypeScope) ResolveMethod(string) (QualifiedName, bool) {
	return QualifiedName{}, false
}

func (s *TypeScope) ResolveType(name string) (*catalog.Class, bool) {
	return resolveType(s, name, ast.Pos{})
}

func (s *TypeScope) resolveTypeFrom(name string, enclosing []string) (*catalog.Class, bool) {
	ctx := s.ctx
	ctx.Enclosing = enclosing
	return s.catalog.ResolveType(name, ctx)
}

// ClassScope answers for one class: its flattened fields and methods, and
// its member types.
type ClassScope struct {
	node
	class *catalog.Class
}

func (s *ClassScope) Class() *catalog.Class { return s.class }

func (s *ClassScope) ResolveIdentifier(name string) (QualifiedName, bool) {
	return s.identifierAt(name, ast.Pos{})
}

func (s *ClassScope) identifierAt(name string, at ast.Pos) (QualifiedName, bool) {
	if f, ok := s.class.Field(name); ok {
		return QualifiedName{
			Kind:      Identifier,
			Owner:     s,
			Name:      name,
			Static:    f.Static,
			Type:      f.Type,
			Declaring: f.Declaring,
		}, true
	}
	return s.resolveIdentifierUp(name, at)
}

func (s *ClassScope) ResolveMethod(name string) (QualifiedName, bool) {
	if m, ok := s.class.Method(name); ok {
		return QualifiedName{
			Kind:      Method,
			Owner:     s,
			Name:      name,
			Static:    m.Static,
			Type:      m.Returns,
			Declaring: m.Declaring,
		}, true
	}
	return s.resolveMethodUp(name)
}

func (s *ClassScope) ResolveType(name string) (*catalog.Class, bool) {
	return resolveType(s, name, ast.Pos{})
}

// ParentType returns the super-dispatch view, or nil for the root class.
func (s *ClassScope) ParentType() *ParentTypeScope {
	if s.class.Super() == nil {
		return nil
	}
	return &ParentTypeScope{owner: s, class: s.class.Super()}
}

// VariableScope holds the parameters of a method, constructor, initializer
// or lambda, or the locals of one block, for, for-each, catch or switch. It
// never answers method lookups.
type VariableScope struct {
	node
	vars  map[string]local
	types map[string]local
}

// local is a declaration visible from its position to the end of the scope.
type local struct {
	ref  string
	from ast.Pos
}

func (l local) visibleAt(at ast.Pos) bool {
	return at == (ast.Pos{}) || !at.Before(l.from)
}

// Declare registers a variable of type typeName visible from position from.
// Parameters pass the zero position.
func (s *VariableScope) Declare(name, typeName string, from ast.Pos) {
	if s.vars == nil {
		s.vars = make(map[string]local)
	}
	s.vars[name] = local{ref: typeName, from: from}
}

// DeclareType registers a local class under its simple name.
func (s *VariableScope) DeclareType(simple, qualified string, from ast.Pos) {
	if s.types == nil {
		s.types = make(map[string]local)
	}
	s.types[simple] = local{ref: qualified, from: from}
}

func (s *VariableScope) ResolveIdentifier(name string) (QualifiedName, bool) {
	return s.identifierAt(name, ast.Pos{})
}

func (s *VariableScope) identifierAt(name string, at ast.Pos) (QualifiedName, bool) {
	if v, ok := s.vars[name]; ok && v.visibleAt(at) {
		return QualifiedName{Kind: Identifier, Name: name, Type: v.ref}, true
	}
	return s.resolveIdentifierUp(name, at)
}

func (s *VariableScope) ResolveMethod(name string) (QualifiedName, bool) {
	return s.resolveMethodUp(name)
}

func (s *VariableScope) ResolveType(name string) (*catalog.Class, bool) {
	return resolveType(s, name, ast.Pos{})
}

// ParentTypeScope views the superclass of a class scope. It is used only to
// resolve super.m(...) and does not delegate further up.
type ParentTypeScope struct {
	owner *ClassScope
	class *catalog.Class
}

func (s *ParentTypeScope) Parent() Scope         { return s.owner }
func (s *ParentTypeScope) Decl() ast.NodeID      { return s.owner.Decl() }
func (s *ParentTypeScope) Class() *catalog.Class { return s.class }

func (s *ParentTypeScope) ResolveIdentifier(name string) (QualifiedName, bool) {
	return s.identifierAt(name, ast.Pos{})
}

func (s *ParentTypeScope) identifierAt(name string, _ ast.Pos) (QualifiedName, bool) {
	f, ok := s.class.Field(name)
	if !ok {
		return QualifiedName{}, false
	}
	return QualifiedName{Kind: Identifier, Owner: s, Name: name, Static: f.Static, Type: f.Type, Declaring: f.Declaring}, true
}

func (s *ParentTypeScope) ResolveMethod(name string) (QualifiedName, bool) {
	m, ok := s.class.Method(name)
	if !ok {
		return QualifiedName{}, false
	}
	return QualifiedName{Kind: Method, Owner: s, Name: name, Static: m.Static, Type: m.Returns, Declaring: m.Declaring}, true
}

func (s *ParentTypeScope) ResolveType(name string) (*catalog.Class, bool) {
	return s.owner.ResolveType(name)
}

func (s *ParentTypeScope) child(ast.NodeID) (Scope, bool) { return nil, false }
func (s *ParentTypeScope) addChild(Scope)                 {}

// resolveType walks to the root collecting enclosing classes, so member
// types of every enclosing class are visible. Local classes declared after
// at are skipped.
func resolveType(from Scope, name string, at ast.Pos) (*catalog.Class, bool) {
	var enclosing []string
	localType := ""
	for cur := from; cur != nil; cur = cur.Parent() {
		switch s := cur.(type) {
		case *VariableScope:
			if t, ok := s.types[name]; ok && t.visibleAt(at) && localType == "" {
				localType = t.ref
			}
		case *ClassScope:
			enclosing = append(enclosing, s.class.QualifiedName())
		case *TypeScope:
			if localType != "" {
				return s.catalog.Lookup(localType)
			}
			return s.resolveTypeFrom(name, enclosing)
		}
	}
	return nil, false
}

// Closest returns the nearest class scope at or above s.
func Closest(s Scope) *ClassScope {
	for cur := s; cur != nil; cur = cur.Parent() {
		if cs, ok := cur.(*ClassScope); ok {
			return cs
		}
	}
	return nil
}

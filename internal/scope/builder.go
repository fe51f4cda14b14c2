// # internal/scope/builder.go
package scope

import (
	"classjs/internal/ast"
	"classjs/internal/catalog"
	"classjs/internal/core/errors"
)

// Build constructs the scope tree of one unit. Every class (top-level,
// member, local or anonymous), method, constructor, initializer and lambda
// gets a scope bound to its declaration node, and so does every block, for,
// for-each, catch clause and switch that can declare locals. types maps class declaration
// nodes (and anonymous creation nodes) to their qualified catalog names.
func Build(tree *ast.Tree, cat *catalog.Catalog, types map[ast.NodeID]string) (*TypeScope, error) {
	root := NewTypeScope(cat, unitContext(tree))
	b := &builder{tree: tree, cat: cat, types: types}
	unit := tree.Node(tree.Root)
	if unit == nil || unit.Kind != ast.KindCompilationUnit {
		return nil, errors.Structural("tree root is not a compilation unit")
	}
	for _, m := range unit.Members {
		if err := b.visit(m, root); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func unitContext(tree *ast.Tree) catalog.TypeContext {
	var ctx catalog.TypeContext
	unit := tree.Node(tree.Root)
	if unit == nil {
		return ctx
	}
	for _, id := range unit.Members {
		n := tree.Node(id)
		switch {
		case n.Kind == ast.KindPackage:
			ctx.Package = n.Name
		case n.Kind == ast.KindImport && n.Static:
			// static imports name members, not types
		case n.Kind == ast.KindImport && n.Flag:
			ctx.Wildcards = append(ctx.Wildcards, n.Name)
		case n.Kind == ast.KindImport:
			ctx.Imports = append(ctx.Imports, n.Name)
		}
	}
	return ctx
}

type builder struct {
	tree  *ast.Tree
	cat   *catalog.Catalog
	types map[ast.NodeID]string
}

func (b *builder) classScope(id ast.NodeID, parent Scope) (*ClassScope, error) {
	q, ok := b.types[id]
	if !ok {
		return nil, errors.Structural("%s node %d has no catalog binding", b.tree.Kind(id), id)
	}
	class, ok := b.cat.Lookup(q)
	if !ok {
		return nil, errors.Structural("class %s is missing from the catalog", q)
	}
	cs := &ClassScope{node: node{parent: parent, decl: id}, class: class}
	parent.addChild(cs)
	return cs, nil
}

func (b *builder) variableScope(id ast.NodeID, parent Scope) *VariableScope {
	vs := &VariableScope{node: node{parent: parent, decl: id}}
	parent.addChild(vs)
	return vs
}

func (b *builder) declareParams(vs *VariableScope, params []ast.NodeID) {
	for _, p := range params {
		if n := b.tree.Node(p); n != nil {
			vs.Declare(n.Name, b.tree.TypeName(n.Type), ast.Pos{})
		}
	}
}

// locals returns the variable scope that receives local declarations made
// while current is in effect.
func locals(current Scope) *VariableScope {
	vs, _ := current.(*VariableScope)
	return vs
}

func (b *builder) visit(id ast.NodeID, current Scope) error {
	n := b.tree.Node(id)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.KindPackage, ast.KindImport:
		return nil

	case ast.KindClass, ast.KindEnum:
		cs, err := b.classScope(id, current)
		if err != nil {
			return err
		}
		if vs := locals(current); vs != nil {
			vs.DeclareType(n.Name, cs.class.QualifiedName(), n.Pos)
		}
		return b.visitAll(n.Members, cs)

	case ast.KindMethod, ast.KindConstructor, ast.KindInitializer:
		vs := b.variableScope(id, current)
		b.declareParams(vs, n.Params)
		return b.visit(n.Body, vs)

	case ast.KindLambda:
		vs := b.variableScope(id, current)
		b.declareParams(vs, n.Params)
		return b.visit(n.Body, vs)

	case ast.KindNew:
		if err := b.visit(n.Type, current); err != nil {
			return err
		}
		if err := b.visitAll(n.Args, current); err != nil {
			return err
		}
		if !n.Flag {
			return nil
		}
		cs, err := b.classScope(id, current)
		if err != nil {
			return err
		}
		return b.visitAll(n.Members, cs)

	case ast.KindLocalVar:
		typeName := b.tree.TypeName(n.Type)
		vs := locals(current)
		for _, v := range n.Vars {
			decl := b.tree.Node(v)
			if decl == nil {
				continue
			}
			if vs != nil {
				vs.Declare(decl.Name, typeName, decl.Pos)
			}
			if err := b.visit(decl.Value, current); err != nil {
				return err
			}
		}
		return nil

	case ast.KindBlock:
		return b.visitAll(n.Stmts, b.variableScope(id, current))

	case ast.KindFor:
		return b.visitAll(b.tree.Children(id), b.variableScope(id, current))

	case ast.KindForEach:
		if err := b.visit(n.Value, current); err != nil {
			return err
		}
		vs := b.variableScope(id, current)
		b.declareParams(vs, n.Vars)
		return b.visit(n.Body, vs)

	case ast.KindCatch:
		vs := b.variableScope(id, current)
		b.declareParams(vs, n.Params)
		return b.visit(n.Body, vs)

	case ast.KindSwitch:
		if err := b.visit(n.Value, current); err != nil {
			return err
		}
		return b.visitAll(n.Entries, b.variableScope(id, current))
	}

	return b.visitAll(b.tree.Children(id), current)
}

func (b *builder) visitAll(ids []ast.NodeID, current Scope) error {
	for _, id := range ids {
		if err := b.visit(id, current); err != nil {
			return err
		}
	}
	return nil
}

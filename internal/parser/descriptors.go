// # internal/parser/descriptors.go
package parser

import (
	"strconv"

	"classjs/internal/ast"
	"classjs/internal/catalog"
)

// extractDescriptors fills the package, catalog descriptors and declaration
// bindings of a freshly converted unit. Anonymous classes are numbered per
// enclosing class in source order; local classes are named after the class
// whose body declares them.
func extractDescriptors(unit *Unit) {
	unit.Types = make(map[ast.NodeID]string)
	x := &descriptorExtractor{unit: unit, tree: unit.Tree, counters: make(map[string]int)}

	root := unit.Tree.Node(unit.Tree.Root)
	if root == nil {
		return
	}
	for _, id := range root.Members {
		n := unit.Tree.Node(id)
		switch {
		case n.Kind == ast.KindPackage:
			x.ctx.Package = n.Name
		case n.Kind == ast.KindImport && n.Static:
		case n.Kind == ast.KindImport && n.Flag:
			x.ctx.Wildcards = append(x.ctx.Wildcards, n.Name)
		case n.Kind == ast.KindImport:
			x.ctx.Imports = append(x.ctx.Imports, n.Name)
		}
	}
	unit.Package = x.ctx.Package

	for _, id := range root.Members {
		switch unit.Tree.Kind(id) {
		case ast.KindClass, ast.KindEnum:
			x.declare(id, nil, false)
		}
	}
}

type descriptorExtractor struct {
	unit     *Unit
	tree     *ast.Tree
	ctx      catalog.TypeContext
	counters map[string]int
}

func (x *descriptorExtractor) context(enclosing []string) catalog.TypeContext {
	ctx := x.ctx
	ctx.Enclosing = enclosing
	return ctx
}

// declare records a class, interface or enum declaration. enclosing lists
// the qualified names of the surrounding classes, innermost first.
func (x *descriptorExtractor) declare(id ast.NodeID, enclosing []string, local bool) {
	n := x.tree.Node(id)
	d := catalog.ClassDescriptor{
		Name:        n.Name,
		Package:     x.ctx.Package,
		Kind:        catalog.KindClass,
		Annotations: n.Annotations,
		Local:       local,
		Source:      true,
		Context:     x.context(enclosing),
	}
	if len(enclosing) > 0 {
		d.Outer = enclosing[0]
	}
	switch {
	case n.Kind == ast.KindEnum:
		d.Kind = catalog.KindEnum
	case n.Flag:
		d.Kind = catalog.KindInterface
	}
	d.Super = x.tree.TypeName(n.Super)
	for _, i := range n.Interfaces {
		d.Interfaces = append(d.Interfaces, x.tree.TypeName(i))
	}

	q := d.QualifiedName()
	x.unit.Types[id] = q
	slot := len(x.unit.Classes)
	x.unit.Classes = append(x.unit.Classes, catalog.ClassDescriptor{})

	inner := append([]string{q}, enclosing...)
	for _, e := range n.Entries {
		ec := x.tree.Node(e)
		d.Fields = append(d.Fields, catalog.FieldDescriptor{Name: ec.Name, Type: q, Static: true})
		for _, arg := range ec.Args {
			x.scan(arg, inner)
		}
	}
	x.members(&d, n.Members, inner)
	x.unit.Classes[slot] = d
}

// anonymous records the class body of an instance creation expression.
func (x *descriptorExtractor) anonymous(id ast.NodeID, enclosing []string) {
	n := x.tree.Node(id)
	outer := ""
	if len(enclosing) > 0 {
		outer = enclosing[0]
	}
	x.counters[outer]++
	d := catalog.ClassDescriptor{
		Name:      strconv.Itoa(x.counters[outer]),
		Package:   x.ctx.Package,
		Outer:     outer,
		Kind:      catalog.KindClass,
		Super:     x.tree.TypeName(n.Type),
		Anonymous: true,
		Source:    true,
		Context:   x.context(enclosing),
	}
	q := d.QualifiedName()
	x.unit.Types[id] = q
	slot := len(x.unit.Classes)
	x.unit.Classes = append(x.unit.Classes, catalog.ClassDescriptor{})

	x.members(&d, n.Members, append([]string{q}, enclosing...))
	x.unit.Classes[slot] = d
}

func (x *descriptorExtractor) members(d *catalog.ClassDescriptor, members []ast.NodeID, inner []string) {
	iface := d.Kind == catalog.KindInterface
	for _, id := range members {
		m := x.tree.Node(id)
		switch m.Kind {
		case ast.KindField:
			typeName := x.tree.TypeName(m.Type)
			for _, v := range m.Vars {
				decl := x.tree.Node(v)
				d.Fields = append(d.Fields, catalog.FieldDescriptor{
					Name:   decl.Name,
					Type:   typeName,
					Static: m.Mods.IsStatic() || iface,
				})
				x.scan(decl.Value, inner)
			}
		case ast.KindMethod:
			md := catalog.MethodDescriptor{
				Name:     m.Name,
				Static:   m.Mods.IsStatic(),
				Abstract: m.Mods.IsAbstract() || (iface && !m.Body.Valid() && !m.Mods.IsStatic()),
				Native:   m.Mods.IsNative(),
				Returns:  x.tree.TypeName(m.Type),
			}
			for _, p := range m.Params {
				md.Params = append(md.Params, x.tree.TypeName(x.tree.Node(p).Type))
			}
			d.Methods = append(d.Methods, md)
			x.scan(m.Body, inner)
		case ast.KindConstructor, ast.KindInitializer:
			x.scan(m.Body, inner)
		case ast.KindClass, ast.KindEnum:
			x.declare(id, inner, false)
		}
	}
}

// scan looks for local and anonymous classes below id.
func (x *descriptorExtractor) scan(id ast.NodeID, enclosing []string) {
	x.tree.Walk(id, func(c ast.NodeID) bool {
		n := x.tree.Node(c)
		switch n.Kind {
		case ast.KindClass, ast.KindEnum:
			x.declare(c, enclosing, true)
			return false
		case ast.KindNew:
			if !n.Flag {
				return true
			}
			for _, arg := range n.Args {
				x.scan(arg, enclosing)
			}
			x.anonymous(c, enclosing)
			return false
		}
		return true
	})
}

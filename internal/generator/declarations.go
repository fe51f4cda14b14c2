// # internal/generator/declarations.go
package generator

import (
	"strconv"
	"strings"

	"classjs/internal/ast"
	"classjs/internal/catalog"
)

func (r *run) class(ctx genContext, n *ast.Node) error {
	var ctor *ast.Node
	for _, id := range n.Members {
		m := r.node(id)
		if m.Kind != ast.KindConstructor {
			continue
		}
		if ctor != nil {
			return r.unsupported(m, "only one constructor is allowed per class")
		}
		ctor = m
	}

	cw, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	cls := cw.ClosestClass().Class()
	cctx := genContext{walker: cw, superBinding: r.superBinding(ctx, n, cls)}
	binding := cls.Binding()

	r.startLine(n)
	if !cls.IsInner() {
		r.print("var ")
	}
	r.print(binding, " = ")
	switch {
	case ctor != nil:
		if err := r.visit(cctx, ctor.ID); err != nil {
			return err
		}
	case cctx.superBinding != "":
		r.print("function(){this._super(null);}")
	default:
		r.print("function(){}")
	}
	r.print(";")

	if cctx.superBinding != "" {
		r.out.EndLine()
		r.print(r.opts.RuntimeNamespace, ".extend(", binding, ", ", cctx.superBinding, ");")
	}
	for _, id := range n.Members {
		if r.tree.Kind(id) == ast.KindConstructor {
			continue
		}
		if err := r.visit(cctx, id); err != nil {
			return err
		}
	}
	if !r.opts.DisableMainCall && r.hasMain(n) {
		r.out.EndLine()
		r.print("if (!", r.opts.RuntimeNamespace, ".mainCallDisabled) ", binding, ".main();")
	}
	return nil
}

// superBinding is the binding of the declared superclass, or "" when the
// class declares none or extends the root class. A supertype missing from
// the catalog keeps its written simple name.
func (r *run) superBinding(ctx genContext, n *ast.Node, cls *catalog.Class) string {
	if !n.Super.Valid() {
		return ""
	}
	if super := cls.Super(); super != nil && cls.HasExplicitSuper() {
		return super.Binding()
	}
	if k, ok := ctx.walker.ResolveType(r.node(n.Super).Name); ok {
		if k.QualifiedName() == catalog.ObjectClass {
			return ""
		}
		return k.Binding()
	}
	return simpleName(r.node(n.Super).Name)
}

func (r *run) hasMain(n *ast.Node) bool {
	for _, id := range n.Members {
		m := r.node(id)
		if m.Kind != ast.KindMethod || m.Name != "main" || !m.Mods.IsStatic() || len(m.Params) != 1 {
			continue
		}
		t := r.node(r.node(m.Params[0]).Type)
		if t != nil && t.Kind == ast.KindTypeRef && t.Dims == 1 && (t.Name == "String" || t.Name == catalog.StringClass) {
			return true
		}
	}
	return false
}

func (r *run) enum(ctx genContext, n *ast.Node) error {
	ew, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	cls := ew.ClosestClass().Class()

	r.startLine(n)
	if !cls.IsInner() {
		r.print("var ")
	}
	r.print(cls.Binding(), " = ", r.opts.RuntimeNamespace, ".enumeration(")
	for i, id := range n.Entries {
		if i > 0 {
			r.print(", ")
		}
		r.print(strconv.Quote(r.node(id).Name))
	}
	r.print(");")
	return nil
}

// memberPrefix is the assignment target prefix of a class member.
func memberPrefix(cls *catalog.Class, static bool) string {
	if static {
		return cls.Binding() + "."
	}
	return cls.Binding() + ".prototype."
}

func (r *run) field(ctx genContext, n *ast.Node) error {
	cls := ctx.walker.ClosestClass().Class()
	static := n.Mods.IsStatic() || cls.IsInterface()
	for _, id := range n.Vars {
		v := r.node(id)
		r.startLine(v)
		r.print(memberPrefix(cls, static), v.Name, " = ")
		if v.Value.Valid() {
			if err := r.visit(ctx, v.Value); err != nil {
				return err
			}
		} else {
			r.print("null")
		}
		r.print(";")
	}
	return nil
}

func (r *run) method(ctx genContext, n *ast.Node) error {
	if n.Mods.IsAbstract() || n.Mods.IsNative() || !n.Body.Valid() {
		return nil
	}
	cls := ctx.walker.ClosestClass().Class()
	mw, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	r.startLine(n)
	r.print(memberPrefix(cls, n.Mods.IsStatic()), n.Name, " = function")
	r.parameters(n.Params)
	r.print(" ")
	if err := r.block(ctx.with(mw), r.node(n.Body)); err != nil {
		return err
	}
	r.print(";")
	return nil
}

// constructor emits the function literal bound to the class. A superclass
// forward is inserted unless the body starts with an explicit one.
func (r *run) constructor(ctx genContext, n *ast.Node) error {
	mw, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	r.print("function")
	r.parameters(n.Params)
	r.print(" ")

	body := r.node(n.Body)
	var prelude []string
	if ctx.superBinding != "" {
		explicit := len(body.Stmts) > 0 && r.tree.Kind(body.Stmts[0]) == ast.KindExplicitCtorCall
		if !explicit {
			prelude = append(prelude, "this._super(null);")
		}
	}
	return r.block(ctx.with(mw), body, prelude...)
}

func (r *run) explicitCtorCall(ctx genContext, n *ast.Node) error {
	if n.Flag {
		return r.unsupported(n, "this(...) constructor calls are not supported")
	}
	if ctx.superBinding == "" {
		return nil
	}
	r.print("this._super(null")
	for _, a := range n.Args {
		r.print(", ")
		if err := r.visit(ctx, a); err != nil {
			return err
		}
	}
	r.print(");")
	return nil
}

func simpleName(name string) string {
	name = strings.TrimRight(name, "[]")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

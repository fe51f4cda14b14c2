// # internal/generator/statements.go
package generator

import (
	"classjs/internal/ast"
)

// block emits braces around the statements of n, one per line, inside the
// block's own scope. prelude lines are written first.
func (r *run) block(ctx genContext, n *ast.Node, prelude ...string) error {
	bw, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	ctx = ctx.with(bw)
	r.out.PrintLn("{")
	r.out.Indent()
	for _, p := range prelude {
		r.out.PrintLn(p)
	}
	for _, id := range n.Stmts {
		r.startLine(r.node(id))
		if err := r.visit(ctx, id); err != nil {
			return err
		}
		r.out.EndLine()
	}
	r.out.Unindent()
	r.print("}")
	return nil
}

func (r *run) localVar(ctx genContext, n *ast.Node) error {
	r.print("var ")
	for i, id := range n.Vars {
		if i > 0 {
			r.print(", ")
		}
		v := r.node(id)
		r.print(v.Name)
		if v.Value.Valid() {
			r.print(" = ")
			if err := r.visit(ctx, v.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) ifStmt(ctx genContext, n *ast.Node) error {
	r.print("if (")
	if err := r.visit(ctx, n.Cond); err != nil {
		return err
	}
	r.print(") ")
	if err := r.visit(ctx, n.Body); err != nil {
		return err
	}
	if n.Else.Valid() {
		r.print(" else ")
		return r.visit(ctx, n.Else)
	}
	return nil
}

func (r *run) whileStmt(ctx genContext, n *ast.Node) error {
	r.print("while (")
	if err := r.visit(ctx, n.Cond); err != nil {
		return err
	}
	r.print(") ")
	return r.visit(ctx, n.Body)
}

func (r *run) doStmt(ctx genContext, n *ast.Node) error {
	r.print("do ")
	if err := r.visit(ctx, n.Body); err != nil {
		return err
	}
	r.print(" while (")
	if err := r.visit(ctx, n.Cond); err != nil {
		return err
	}
	r.print(");")
	return nil
}

func (r *run) forStmt(ctx genContext, n *ast.Node) error {
	fw, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	ctx = ctx.with(fw)
	r.print("for (")
	for i, id := range n.Stmts {
		if i > 0 {
			r.print(", ")
		}
		init := r.node(id)
		var err error
		if init.Kind == ast.KindLocalVar {
			err = r.localVar(ctx, init)
		} else {
			err = r.visit(ctx, id)
		}
		if err != nil {
			return err
		}
	}
	r.print("; ")
	if n.Cond.Valid() {
		if err := r.visit(ctx, n.Cond); err != nil {
			return err
		}
	}
	r.print("; ")
	if err := r.list(ctx, n.Entries); err != nil {
		return err
	}
	r.print(") ")
	return r.visit(ctx, n.Body)
}

func (r *run) forEach(ctx genContext, n *ast.Node) error {
	r.print("for (var ", r.node(n.Vars[0]).Name, " in ")
	if err := r.visit(ctx, n.Value); err != nil {
		return err
	}
	r.print(") ")
	fw, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	return r.visit(ctx.with(fw), n.Body)
}

func (r *run) jump(ctx genContext, n *ast.Node, keyword string) error {
	r.print(keyword)
	if n.Value.Valid() {
		r.print(" ")
		if err := r.visit(ctx, n.Value); err != nil {
			return err
		}
	}
	r.print(";")
	return nil
}

func (r *run) tryStmt(ctx genContext, n *ast.Node) error {
	r.print("try ")
	if err := r.visit(ctx, n.Body); err != nil {
		return err
	}
	for _, id := range n.Entries {
		if err := r.visit(ctx, id); err != nil {
			return err
		}
	}
	if n.Else.Valid() {
		r.print(" finally ")
		return r.visit(ctx, n.Else)
	}
	return nil
}

func (r *run) catchClause(ctx genContext, n *ast.Node) error {
	cw, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	r.print(" catch (", r.node(n.Params[0]).Name, ") ")
	return r.visit(ctx.with(cw), n.Body)
}

func (r *run) switchStmt(ctx genContext, n *ast.Node) error {
	r.print("switch (")
	if err := r.visit(ctx, n.Value); err != nil {
		return err
	}
	r.out.PrintLn(") {")
	enum := r.enumBinding(ctx, n.Value)
	sw, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	ctx = ctx.with(sw)
	r.out.Indent()
	for _, id := range n.Entries {
		entry := r.node(id)
		r.startLine(entry)
		if err := r.switchEntry(ctx, entry, enum); err != nil {
			return err
		}
	}
	r.out.Unindent()
	r.out.EndLine()
	r.print("}")
	return nil
}

// switchEntry emits one case label and its statements. Labels of an enum
// selector are qualified with the enum binding.
func (r *run) switchEntry(ctx genContext, n *ast.Node, enum string) error {
	if len(n.Args) == 0 {
		r.out.PrintLn("default:")
	}
	for _, id := range n.Args {
		r.print("case ")
		label := r.node(id)
		if enum != "" && label.Kind == ast.KindName {
			r.print(enum, ".", label.Name)
		} else if err := r.visit(ctx, id); err != nil {
			return err
		}
		r.out.PrintLn(":")
	}
	r.out.Indent()
	for _, id := range n.Stmts {
		r.startLine(r.node(id))
		if err := r.visit(ctx, id); err != nil {
			return err
		}
		r.out.EndLine()
	}
	r.out.Unindent()
	return nil
}

// enumBinding returns the binding of the selector's type when it is an
// enum. Variables, this-qualified fields and calls of methods visible from
// the current class are inspected; the declared return type decides for
// calls.
func (r *run) enumBinding(ctx genContext, selector ast.NodeID) string {
	n := r.node(selector)
	if n == nil {
		return ""
	}
	w := ctx.walker.At(selector)
	var typeName string
	switch {
	case n.Kind == ast.KindParen:
		return r.enumBinding(ctx, n.Value)
	case n.Kind == ast.KindName:
		q, ok := w.ResolveIdentifier(n.Name)
		if !ok {
			return ""
		}
		typeName = q.Type
	case n.Kind == ast.KindFieldAccess && r.tree.Kind(n.Receiver) == ast.KindThis:
		cs := w.ClosestClass()
		if cs == nil {
			return ""
		}
		q, ok := cs.ResolveIdentifier(n.Name)
		if !ok {
			return ""
		}
		typeName = q.Type
	case n.Kind == ast.KindMethodCall && (!n.Receiver.Valid() || r.tree.Kind(n.Receiver) == ast.KindThis):
		q, ok := w.ResolveMethod(n.Name)
		if !ok {
			return ""
		}
		typeName = q.Type
	default:
		return ""
	}
	if typeName == "" {
		return ""
	}
	k, ok := w.ResolveType(typeName)
	if !ok || !k.IsEnum() {
		return ""
	}
	return k.Binding()
}

// # internal/generator/expressions.go
package generator

import (
	"strconv"
	"strings"

	"classjs/internal/ast"
	"classjs/internal/catalog"
	"classjs/internal/scope"
)

// name emits an identifier. Fields are qualified: instance fields of the
// current class or its ancestors with this, static fields with the
// declaring class binding.
func (r *run) name(ctx genContext, n *ast.Node) error {
	q, ok := ctx.walker.At(n.ID).ResolveIdentifier(n.Name)
	if !ok || q.IsLocal() || q.Declaring == nil {
		r.print(n.Name)
		return nil
	}
	if q.Static {
		r.print(staticPrefix(q.Declaring), n.Name)
		return nil
	}
	if cur := ctx.walker.ClosestClass(); cur != nil && sameOrAncestor(q.Declaring, cur.Class()) {
		r.print("this.")
	}
	r.print(n.Name)
	return nil
}

func sameOrAncestor(declaring, cur *catalog.Class) bool {
	return declaring == cur || declaring.IsAncestorOf(cur)
}

// staticPrefix qualifies a static member; global-scope types need none.
func staticPrefix(k *catalog.Class) string {
	if k.IsGlobal() {
		return ""
	}
	return k.Binding() + "."
}

// typeReceiver reports whether id names a type rather than a value, and
// returns it.
func (r *run) typeReceiver(ctx genContext, id ast.NodeID) (*catalog.Class, bool) {
	dotted, ok := r.dotted(id)
	if !ok {
		return nil, false
	}
	w := ctx.walker.At(id)
	head, _, _ := strings.Cut(dotted, ".")
	if _, isValue := w.ResolveIdentifier(head); isValue {
		return nil, false
	}
	return w.ResolveType(dotted)
}

// dotted renders a chain of plain names joined by dots.
func (r *run) dotted(id ast.NodeID) (string, bool) {
	n := r.node(id)
	switch {
	case n == nil:
		return "", false
	case n.Kind == ast.KindName:
		return n.Name, true
	case n.Kind == ast.KindFieldAccess:
		head, ok := r.dotted(n.Receiver)
		if !ok {
			return "", false
		}
		return head + "." + n.Name, true
	}
	return "", false
}

func (r *run) fieldAccess(ctx genContext, n *ast.Node) error {
	switch recv := r.node(n.Receiver); {
	case recv != nil && recv.Kind == ast.KindSuper:
		if q, ok := r.parentMember(ctx, n.Name, false); ok && q.Static {
			r.print(staticPrefix(q.Declaring), n.Name)
			return nil
		}
		r.print("this.", n.Name)
		return nil
	case recv != nil && (recv.Kind == ast.KindName || recv.Kind == ast.KindFieldAccess):
		if k, ok := r.typeReceiver(ctx, n.Receiver); ok {
			r.print(staticPrefix(k), n.Name)
			return nil
		}
	}
	if err := r.visit(ctx, n.Receiver); err != nil {
		return err
	}
	r.print(".", n.Name)
	return nil
}

// methodCall applies the dispatch rules: static calls are prefixed with the
// owner binding, calls on the current class use this, inherited instance
// methods go through _super and other receivers are kept as written. The
// first overload candidate decides.
func (r *run) methodCall(ctx genContext, n *ast.Node) error {
	recv := r.node(n.Receiver)
	switch {
	case recv == nil || (recv.Kind == ast.KindThis && !recv.Receiver.Valid()):
		q, ok := ctx.walker.ResolveMethod(n.Name)
		if !ok {
			if recv != nil {
				r.print("this.")
			}
			r.print(n.Name)
			return r.arguments(ctx, n.Args)
		}
		return r.resolvedCall(ctx, n, q, recv != nil)

	case recv.Kind == ast.KindSuper:
		if q, ok := r.parentMember(ctx, n.Name, true); ok && q.Static {
			r.print(staticPrefix(q.Declaring), n.Name)
			return r.arguments(ctx, n.Args)
		}
		return r.superCall(ctx, n)

	case recv.Kind == ast.KindName || recv.Kind == ast.KindFieldAccess:
		if k, ok := r.typeReceiver(ctx, n.Receiver); ok {
			r.print(staticPrefix(k), n.Name)
			return r.arguments(ctx, n.Args)
		}
	}
	if err := r.visit(ctx, n.Receiver); err != nil {
		return err
	}
	r.print(".", n.Name)
	return r.arguments(ctx, n.Args)
}

func (r *run) resolvedCall(ctx genContext, n *ast.Node, q scope.QualifiedName, explicitThis bool) error {
	if q.Static {
		r.print(staticPrefix(q.Declaring), n.Name)
		return r.arguments(ctx, n.Args)
	}
	var cur *catalog.Class
	if cs := ctx.walker.ClosestClass(); cs != nil {
		cur = cs.Class()
	}
	switch {
	case cur != nil && (q.Declaring == cur || q.Declaring.Implements(cur)):
		r.print("this.", n.Name)
	case cur != nil && q.Declaring.IsAncestorOf(cur):
		return r.superCall(ctx, n)
	default:
		if explicitThis {
			r.print("this.")
		}
		r.print(n.Name)
	}
	return r.arguments(ctx, n.Args)
}

// parentMember resolves a super-qualified member in the superclass of the
// current class.
func (r *run) parentMember(ctx genContext, name string, method bool) (scope.QualifiedName, bool) {
	cs := ctx.walker.ClosestClass()
	if cs == nil {
		return scope.QualifiedName{}, false
	}
	parent := cs.ParentType()
	if parent == nil {
		return scope.QualifiedName{}, false
	}
	if method {
		return parent.ResolveMethod(name)
	}
	return parent.ResolveIdentifier(name)
}

func (r *run) superCall(ctx genContext, n *ast.Node) error {
	r.print("this._super(", strconv.Quote(n.Name))
	for _, a := range n.Args {
		r.print(", ")
		if err := r.visit(ctx, a); err != nil {
			return err
		}
	}
	r.print(")")
	return nil
}

// typeBinding renders a type reference by its class binding, or by its
// written simple name when the type is unknown.
func (r *run) typeBinding(ctx genContext, id ast.NodeID) string {
	t := r.node(id)
	if t == nil {
		return ""
	}
	if k, ok := ctx.walker.At(id).ResolveType(t.Name); ok {
		return k.Binding()
	}
	return simpleName(t.Name)
}

func (r *run) newExpr(ctx genContext, n *ast.Node) error {
	if n.Flag {
		return r.anonymous(ctx, n)
	}
	if t := r.node(n.Type); t != nil {
		if k, ok := ctx.walker.At(t.ID).ResolveType(t.Name); ok && k.IsDataType() {
			r.print("{}")
			return nil
		}
	}
	r.print("new ", r.typeBinding(ctx, n.Type))
	return r.arguments(ctx, n.Args)
}

// anonymous emits an anonymous class body. A body with a single method
// and nothing else becomes a function literal, a body holding only an
// initializer block becomes an object literal.
func (r *run) anonymous(ctx genContext, n *ast.Node) error {
	aw, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	actx := ctx.with(aw)

	var methods, inits, others []*ast.Node
	for _, id := range n.Members {
		m := r.node(id)
		switch m.Kind {
		case ast.KindEmptyMember:
		case ast.KindMethod:
			methods = append(methods, m)
		case ast.KindInitializer:
			inits = append(inits, m)
		default:
			others = append(others, m)
		}
	}

	switch {
	case len(methods) == 1 && len(inits) == 0 && len(others) == 0:
		m := methods[0]
		mw, err := aw.Enter(m.ID)
		if err != nil {
			return err
		}
		r.print("function")
		r.parameters(m.Params)
		r.print(" ")
		if !m.Body.Valid() {
			r.print("{}")
			return nil
		}
		return r.block(actx.with(mw), r.node(m.Body))
	case len(inits) == 1 && len(methods) == 0 && len(others) == 0 && !inits[0].Mods.IsStatic():
		iw, err := aw.Enter(inits[0].ID)
		if err != nil {
			return err
		}
		return r.objectLiteral(actx.with(iw), r.node(inits[0].Body))
	}
	return r.unsupported(n, "anonymous classes must declare exactly one method or one initializer block")
}

// objectLiteral renders an initializer block of plain assignments as an
// object literal keyed by the assigned field names.
func (r *run) objectLiteral(ctx genContext, block *ast.Node) error {
	if len(block.Stmts) == 0 {
		r.print("{}")
		return nil
	}
	r.out.PrintLn("{")
	r.out.Indent()
	for i, id := range block.Stmts {
		s := r.node(id)
		assign := r.node(s.Value)
		if s.Kind != ast.KindExprStmt || assign == nil || assign.Kind != ast.KindAssign || assign.Op != "=" {
			return r.unsupported(s, "only plain assignments are allowed in an object initializer block")
		}
		target := r.node(assign.Left)
		if target.Kind != ast.KindName && target.Kind != ast.KindFieldAccess {
			return r.unsupported(target, "object initializer assignments must target a field")
		}
		r.startLine(s)
		r.print(target.Name, ": ")
		if err := r.visit(ctx, assign.Right); err != nil {
			return err
		}
		if i < len(block.Stmts)-1 {
			r.print(",")
		}
		r.out.EndLine()
	}
	r.out.Unindent()
	r.print("}")
	return nil
}

func (r *run) binary(ctx genContext, n *ast.Node) error {
	if err := r.visit(ctx, n.Left); err != nil {
		return err
	}
	r.print(" ", n.Op, " ")
	return r.visit(ctx, n.Right)
}

func (r *run) unary(ctx genContext, n *ast.Node) error {
	if !n.Flag {
		r.print(n.Op)
	}
	if err := r.visit(ctx, n.Value); err != nil {
		return err
	}
	if n.Flag {
		r.print(n.Op)
	}
	return nil
}

func (r *run) conditional(ctx genContext, n *ast.Node) error {
	if err := r.visit(ctx, n.Cond); err != nil {
		return err
	}
	r.print(" ? ")
	if err := r.visit(ctx, n.Left); err != nil {
		return err
	}
	r.print(" : ")
	return r.visit(ctx, n.Right)
}

// instanceOf compares constructors. Every array type, primitive element or
// not, tests against Array.
func (r *run) instanceOf(ctx genContext, n *ast.Node) error {
	t := r.node(n.Type)
	switch {
	case t == nil:
		return r.unsupported(n, "instanceof requires a reference type")
	case t.Kind == ast.KindTypeRef:
	case t.Kind == ast.KindPrimitiveType && t.Dims > 0:
	default:
		return r.unsupported(n, "instanceof requires a reference type")
	}
	if err := r.visit(ctx, n.Value); err != nil {
		return err
	}
	binding := "Array"
	if t.Dims == 0 {
		binding = r.typeBinding(ctx, t.ID)
	}
	r.print(".constructor == ", binding)
	return nil
}

// arrayCreation keeps the initializer and drops the element type. Sized
// creations become an Array of the first dimension.
func (r *run) arrayCreation(ctx genContext, n *ast.Node) error {
	if n.Value.Valid() {
		return r.visit(ctx, n.Value)
	}
	if len(n.Args) == 0 {
		r.print("[]")
		return nil
	}
	r.print("new Array(")
	if err := r.visit(ctx, n.Args[0]); err != nil {
		return err
	}
	r.print(")")
	return nil
}

func (r *run) lambda(ctx genContext, n *ast.Node) error {
	lw, err := ctx.walker.Enter(n.ID)
	if err != nil {
		return err
	}
	lctx := ctx.with(lw)
	r.print("function")
	r.parameters(n.Params)
	r.print(" ")
	body := r.node(n.Body)
	if body.Kind == ast.KindBlock {
		if err := r.block(lctx, body); err != nil {
			return err
		}
	} else {
		r.out.PrintLn("{")
		r.out.Indent()
		r.print("return ")
		if err := r.visit(lctx, n.Body); err != nil {
			return err
		}
		r.out.PrintLn(";")
		r.out.Unindent()
		r.print("}")
	}
	if r.instanceContext(n.ID) {
		r.print(".bind(this)")
	}
	return nil
}

// instanceContext reports whether id sits in code that runs with an
// instance as this: a non-static method, constructor, initializer or field.
func (r *run) instanceContext(id ast.NodeID) bool {
	for cur := r.tree.Parent(id); cur.Valid(); cur = r.tree.Parent(cur) {
		n := r.node(cur)
		switch n.Kind {
		case ast.KindMethod, ast.KindInitializer, ast.KindField:
			return !n.Mods.IsStatic()
		case ast.KindConstructor:
			return true
		case ast.KindClass, ast.KindEnum:
			return false
		}
	}
	return false
}

// literal renders a literal in JavaScript syntax. Numeric type suffixes and
// digit separators are dropped and octal integers become decimal.
func literal(n *ast.Node) string {
	switch n.Lit {
	case ast.LitInt, ast.LitFloat:
		return number(n.Text, n.Lit == ast.LitFloat)
	case ast.LitNull:
		return "null"
	}
	return n.Text
}

func number(text string, float bool) string {
	s := strings.ReplaceAll(text, "_", "")
	lower := strings.ToLower(s)
	hex := strings.HasPrefix(lower, "0x")
	switch {
	case hex && !float:
		s = strings.TrimRight(s, "lL")
	case hex:
		s = strings.TrimRight(s, "fFdD")
	default:
		s = strings.TrimRight(s, "lLfFdD")
	}
	if !float && len(s) > 1 && s[0] == '0' && !hex && !strings.HasPrefix(lower, "0b") {
		if v, err := strconv.ParseInt(s[1:], 8, 64); err == nil {
			return strconv.FormatInt(v, 10)
		}
	}
	return s
}

package scope_test

import (
	"testing"

	"classjs/internal/ast"
	"classjs/internal/catalog"
	"classjs/internal/core/errors"
	"classjs/internal/parser"
	"classjs/internal/scope"
)

type fixture struct {
	unit *parser.Unit
	cat  *catalog.Catalog
	root scope.Walker
}

func build(t *testing.T, src string) fixture {
	t.Helper()
	loader, err := parser.NewGrammarLoader(parser.LangJava)
	if err != nil {
		t.Fatal(err)
	}
	unit, err := parser.NewParser(loader).ParseFile("Test.java", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b := catalog.NewBuilder()
	for _, d := range unit.Classes {
		if err := b.Add(d); err != nil {
			t.Fatal(err)
		}
	}
	cat, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	ts, err := scope.Build(unit.Tree, cat, unit.Types)
	if err != nil {
		t.Fatalf("scope build: %v", err)
	}
	return fixture{unit: unit, cat: cat, root: scope.NewWalker(unit.Tree, ts)}
}

// find returns the first node of kind whose Name matches.
func (f fixture) find(t *testing.T, kind ast.Kind, name string) ast.NodeID {
	t.Helper()
	found := ast.InvalidNode
	tree := f.unit.Tree
	tree.Walk(tree.Root, func(id ast.NodeID) bool {
		if n := tree.Node(id); found == ast.InvalidNode && n.Kind == kind && n.Name == name {
			found = id
		}
		return true
	})
	if !found.Valid() {
		t.Fatalf("no %s named %q", kind, name)
	}
	return found
}

// findAll returns every node of kind whose Name matches, in source order.
func (f fixture) findAll(kind ast.Kind, name string) []ast.NodeID {
	var out []ast.NodeID
	tree := f.unit.Tree
	tree.Walk(tree.Root, func(id ast.NodeID) bool {
		if n := tree.Node(id); n.Kind == kind && n.Name == name {
			out = append(out, id)
		}
		return true
	})
	return out
}

// body returns the body block of a method.
func (f fixture) body(id ast.NodeID) ast.NodeID {
	return f.unit.Tree.Node(id).Body
}

// enter steps through the given declarations in order.
func (f fixture) enter(t *testing.T, decls ...ast.NodeID) scope.Walker {
	t.Helper()
	w := f.root
	for _, d := range decls {
		var err error
		if w, err = w.Enter(d); err != nil {
			t.Fatalf("enter: %v", err)
		}
	}
	return w
}

const shapes = `
package app;

class A {
    int f;
    static int s;
    void m(int p) {
        int f = 1;
        class Helper {}
    }
    void n() {}
    static void util() {}
    class Inner {}
}

class B extends A {
    void k() {}
    Runnable r = new Runnable() {
        public void run() { k(); }
    };
}
`

func TestLocalShadowsField(t *testing.T) {
	f := build(t, shapes)
	m := f.find(t, ast.KindMethod, "m")
	w := f.enter(t, f.find(t, ast.KindClass, "A"), m, f.body(m))

	q, ok := w.ResolveIdentifier("f")
	if !ok || !q.IsLocal() || q.Type != "int" {
		t.Fatalf("expected local f, got %+v", q)
	}
	p, ok := w.ResolveIdentifier("p")
	if !ok || !p.IsLocal() {
		t.Fatalf("expected parameter p, got %+v", p)
	}
	s, ok := w.ResolveIdentifier("s")
	if !ok || s.IsLocal() || !s.Static || s.Declaring.QualifiedName() != "app.A" {
		t.Fatalf("expected static field s, got %+v", s)
	}
	if _, ok := w.ResolveIdentifier("missing"); ok {
		t.Fatal("unknown identifiers must miss")
	}
}

func TestMethodResolution(t *testing.T) {
	f := build(t, shapes)
	a := f.enter(t, f.find(t, ast.KindClass, "A"), f.find(t, ast.KindMethod, "m"))

	n, ok := a.ResolveMethod("n")
	if !ok || n.Kind != scope.Method || n.Static || n.Declaring.QualifiedName() != "app.A" {
		t.Fatalf("unexpected n: %+v", n)
	}
	util, ok := a.ResolveMethod("util")
	if !ok || !util.Static {
		t.Fatalf("unexpected util: %+v", util)
	}

	b := f.enter(t, f.find(t, ast.KindClass, "B"), f.find(t, ast.KindMethod, "k"))
	m, ok := b.ResolveMethod("m")
	if !ok {
		t.Fatal("inherited method m should resolve")
	}
	closest := b.ClosestClass().Class()
	if closest.QualifiedName() != "app.B" || !m.Declaring.IsAncestorOf(closest) {
		t.Fatalf("m should be declared by an ancestor of B, got %s", m.Declaring.QualifiedName())
	}

	parent := b.ClosestClass().ParentType()
	if parent == nil || parent.Class().QualifiedName() != "app.A" {
		t.Fatal("B should expose A as its parent type")
	}
	if _, ok := parent.ResolveMethod("k"); ok {
		t.Fatal("the parent view must not see B's own methods")
	}
}

func TestVariableScopeNeverAnswersMethods(t *testing.T) {
	f := build(t, shapes)
	w := f.enter(t, f.find(t, ast.KindClass, "A"), f.find(t, ast.KindMethod, "m"))
	vs, ok := w.Scope().(*scope.VariableScope)
	if !ok {
		t.Fatalf("expected a variable scope, got %T", w.Scope())
	}
	q, ok := vs.ResolveMethod("n")
	if !ok || q.Owner == scope.Scope(vs) {
		t.Fatalf("method lookups must be answered by the class scope, got %+v", q)
	}
}

func TestAnonymousBodyScope(t *testing.T) {
	f := build(t, shapes)
	var anon ast.NodeID = ast.InvalidNode
	tree := f.unit.Tree
	tree.Walk(tree.Root, func(id ast.NodeID) bool {
		if n := tree.Node(id); n.Kind == ast.KindNew && n.Flag {
			anon = id
		}
		return true
	})
	w := f.enter(t, f.find(t, ast.KindClass, "B"), anon, f.find(t, ast.KindMethod, "run"))

	cls := w.ClosestClass().Class()
	if !cls.IsAnonymous() || cls.QualifiedName() != "app.B$1" {
		t.Fatalf("unexpected anonymous class %s", cls.QualifiedName())
	}
	k, ok := w.ResolveMethod("k")
	if !ok || k.Declaring.QualifiedName() != "app.B" {
		t.Fatalf("k should resolve to the enclosing class, got %+v", k)
	}
}

func TestTypeResolution(t *testing.T) {
	f := build(t, shapes)
	m := f.find(t, ast.KindMethod, "m")
	w := f.enter(t, f.find(t, ast.KindClass, "A"), m, f.body(m))

	for name, want := range map[string]string{
		"Inner":  "app.A.Inner",
		"Helper": "app.A.Helper",
		"B":      "app.B",
		"String": catalog.StringClass,
	} {
		k, ok := w.ResolveType(name)
		if !ok || k.QualifiedName() != want {
			t.Errorf("ResolveType(%s) = %v, want %s", name, k, want)
		}
	}
	if _, ok := w.ResolveType("Nope"); ok {
		t.Fatal("unknown type must miss")
	}
}

func TestEnterUnboundDeclaration(t *testing.T) {
	f := build(t, shapes)
	_, err := f.root.Enter(f.find(t, ast.KindMethod, "m"))
	if !errors.IsCode(err, errors.CodeStructuralInvariant) {
		t.Fatalf("expected STRUCTURAL_INVARIANT, got %v", err)
	}
}

func TestQualifiedNameKinds(t *testing.T) {
	if scope.Identifier.String() != "identifier" || scope.Method.String() != "method" || scope.Type.String() != "type" {
		t.Fatal("unexpected kind names")
	}
}

const ordering = `
package app;

class C {
    int x;
    int m(boolean b) {
        int y = x;
        if (b) {
            int x = 2;
            y = x;
        }
        int z = x;
        int x = 3;
        class Late {}
        return x + y + z;
    }
}
`

func TestLocalsVisibleFromDeclaration(t *testing.T) {
	f := build(t, ordering)
	m := f.find(t, ast.KindMethod, "m")
	w := f.enter(t, f.find(t, ast.KindClass, "C"), m, f.body(m))

	uses := f.findAll(ast.KindName, "x")
	if len(uses) != 4 {
		t.Fatalf("expected 4 uses of x, got %d", len(uses))
	}
	// before any local x is declared in the method body
	for _, i := range []int{0, 2} {
		q, ok := w.At(uses[i]).ResolveIdentifier("x")
		if !ok || q.IsLocal() || q.Declaring.QualifiedName() != "app.C" {
			t.Errorf("use %d: expected field x, got %+v", i, q)
		}
	}
	q, ok := w.At(uses[3]).ResolveIdentifier("x")
	if !ok || !q.IsLocal() {
		t.Errorf("expected local x after its declaration, got %+v", q)
	}
	if k, ok := w.At(uses[3]).ResolveType("Late"); !ok || k.QualifiedName() != "app.C.Late" {
		t.Errorf("expected local class Late, got %v", k)
	}

	// the if block holds its own x
	ifs := f.unit.Tree.Node(f.body(m)).Stmts[1]
	inner := f.unit.Tree.Node(ifs).Body
	bw, err := w.Enter(inner)
	if err != nil {
		t.Fatalf("enter if block: %v", err)
	}
	if q, ok := bw.At(uses[1]).ResolveIdentifier("x"); !ok || !q.IsLocal() {
		t.Errorf("expected the block local x, got %+v", q)
	}
}

func TestParentTypeStaticMembers(t *testing.T) {
	f := build(t, `
package app;
class P {
    static int count;
    static int s() { return 1; }
    int i() { return 2; }
}
class C extends P {
    int i() { return super.s() + super.i(); }
}
`)
	w := f.enter(t, f.findAll(ast.KindClass, "C")[0])
	parent := w.ClosestClass().ParentType()
	if parent == nil {
		t.Fatal("C should expose P as its parent type")
	}
	if q, ok := parent.ResolveMethod("s"); !ok || !q.Static || q.Declaring.QualifiedName() != "app.P" || q.Type != "int" {
		t.Fatalf("unexpected s: %+v", q)
	}
	if q, ok := parent.ResolveIdentifier("count"); !ok || !q.Static {
		t.Fatalf("unexpected count: %+v", q)
	}
	if q, ok := parent.ResolveMethod("i"); !ok || q.Static {
		t.Fatalf("unexpected i: %+v", q)
	}
}

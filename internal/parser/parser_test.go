// # internal/parser/parser_test.go
package parser

import (
	"testing"

	"classjs/internal/ast"
	"classjs/internal/catalog"
	"classjs/internal/core/errors"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader()
	if err != nil {
		t.Fatal(err)
	}
	return NewParser(loader)
}

func parseJava(t *testing.T, src string) *Unit {
	t.Helper()
	unit, err := newTestParser(t).ParseFile("Test.java", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return unit
}

func nodesOfKind(tree *ast.Tree, kind ast.Kind) []*ast.Node {
	var out []*ast.Node
	tree.Walk(tree.Root, func(id ast.NodeID) bool {
		if n := tree.Node(id); n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

func descriptor(t *testing.T, unit *Unit, qualified string) catalog.ClassDescriptor {
	t.Helper()
	for _, d := range unit.Classes {
		if d.QualifiedName() == qualified {
			return d
		}
	}
	t.Fatalf("no descriptor %s", qualified)
	return catalog.ClassDescriptor{}
}

func TestJavaUnitDescriptors(t *testing.T) {
	unit := parseJava(t, `
package org.acme;

import java.util.List;
import org.other.*;

public class Shop extends Base implements Runnable {
    private static int count = 0;
    String name, label;
    Runnable task = new Runnable() {
        public void run() {}
    };

    public Shop(String name) {
        this.name = name;
    }

    public void run() {
        class Helper {}
        Object o = new Object() {};
    }

    static String describe(int a, String[] rest) { return ""; }

    enum Color { RED, GREEN }
}

interface Named {
    String name();
}
`)

	if unit.Package != "org.acme" {
		t.Fatalf("package = %q", unit.Package)
	}
	if got := unit.Primary(); got != "org.acme.Shop" {
		t.Fatalf("primary = %q", got)
	}

	want := []string{
		"org.acme.Shop",
		"org.acme.Shop$1",
		"org.acme.Shop.Helper",
		"org.acme.Shop$2",
		"org.acme.Shop.Color",
		"org.acme.Named",
	}
	if len(unit.Classes) != len(want) {
		names := make([]string, 0, len(unit.Classes))
		for _, d := range unit.Classes {
			names = append(names, d.QualifiedName())
		}
		t.Fatalf("classes = %v, want %v", names, want)
	}
	for i, d := range unit.Classes {
		if d.QualifiedName() != want[i] {
			t.Errorf("class %d = %s, want %s", i, d.QualifiedName(), want[i])
		}
		if !d.Source {
			t.Errorf("%s should be marked as a source class", d.QualifiedName())
		}
	}

	shop := descriptor(t, unit, "org.acme.Shop")
	if shop.Super != "Base" || len(shop.Interfaces) != 1 || shop.Interfaces[0] != "Runnable" {
		t.Fatalf("supertypes = %q %v", shop.Super, shop.Interfaces)
	}
	if shop.Context.Package != "org.acme" || len(shop.Context.Imports) != 1 || len(shop.Context.Wildcards) != 1 {
		t.Fatalf("context = %+v", shop.Context)
	}
	if len(shop.Fields) != 4 {
		t.Fatalf("expected 4 fields, got %+v", shop.Fields)
	}
	if !shop.Fields[0].Static || shop.Fields[1].Static || shop.Fields[2].Name != "label" {
		t.Fatalf("unexpected fields %+v", shop.Fields)
	}
	var describe catalog.MethodDescriptor
	for _, m := range shop.Methods {
		if m.Name == "describe" {
			describe = m
		}
	}
	if !describe.Static || describe.Returns != "String" || len(describe.Params) != 2 || describe.Params[1] != "String[]" {
		t.Fatalf("describe = %+v", describe)
	}

	anon := descriptor(t, unit, "org.acme.Shop$1")
	if !anon.Anonymous || anon.Super != "Runnable" || anon.Outer != "org.acme.Shop" {
		t.Fatalf("anonymous = %+v", anon)
	}
	helper := descriptor(t, unit, "org.acme.Shop.Helper")
	if !helper.Local {
		t.Fatal("Helper should be a local class")
	}

	color := descriptor(t, unit, "org.acme.Shop.Color")
	if color.Kind != catalog.KindEnum || len(color.Fields) != 2 || color.Fields[0].Type != "org.acme.Shop.Color" {
		t.Fatalf("enum = %+v", color)
	}

	named := descriptor(t, unit, "org.acme.Named")
	if named.Kind != catalog.KindInterface || len(named.Methods) != 1 || !named.Methods[0].Abstract {
		t.Fatalf("interface = %+v", named)
	}

	for _, n := range nodesOfKind(unit.Tree, ast.KindNew) {
		if n.Flag {
			if _, ok := unit.Types[n.ID]; !ok {
				t.Errorf("anonymous creation at %v has no binding", n.Pos)
			}
		}
	}
}

func TestJavaParentsLinked(t *testing.T) {
	unit := parseJava(t, `class A { void m() { int x = 1; x++; } }`)
	tree := unit.Tree
	for i := range tree.Nodes {
		id := ast.NodeID(i)
		if id == tree.Root {
			continue
		}
		if !tree.Parent(id).Valid() {
			t.Fatalf("node %s at %v has no parent", tree.Kind(id), tree.Node(id).Pos)
		}
	}
	updates := nodesOfKind(tree, ast.KindUnary)
	if len(updates) != 1 || !updates[0].Flag || updates[0].Op != "++" {
		t.Fatalf("expected one postfix ++, got %+v", updates)
	}
}

func TestJavaStatementShapes(t *testing.T) {
	unit := parseJava(t, `
class S {
    class In {
        Object outer() { return S.this; }
    }
    void m(int x, int[] xs) {
        for (int i = 0, j = 1; i < x; i++, j--) {}
        for (int v : xs) {}
        switch (x) {
            case 1:
            case 2:
                a();
                break;
            default:
                b();
        }
        try { a(); } catch (RuntimeException e) { b(); } finally { c(); }
        long big = 1_000L;
    }
}
`)
	tree := unit.Tree

	fors := nodesOfKind(tree, ast.KindFor)
	if len(fors) != 1 || len(fors[0].Stmts) != 1 || len(fors[0].Entries) != 2 || !fors[0].Cond.Valid() {
		t.Fatalf("unexpected for loop %+v", fors)
	}
	if vars := tree.Node(fors[0].Stmts[0]).Vars; len(vars) != 2 {
		t.Fatalf("expected two loop variables, got %d", len(vars))
	}

	each := nodesOfKind(tree, ast.KindForEach)
	if len(each) != 1 || tree.Node(each[0].Vars[0]).Name != "v" {
		t.Fatalf("unexpected foreach %+v", each)
	}

	switches := nodesOfKind(tree, ast.KindSwitch)
	if len(switches) != 1 || len(switches[0].Entries) != 3 {
		t.Fatalf("expected three switch entries, got %+v", switches)
	}
	first, second, def := tree.Node(switches[0].Entries[0]), tree.Node(switches[0].Entries[1]), tree.Node(switches[0].Entries[2])
	if len(first.Stmts) != 0 || len(second.Stmts) != 2 || len(def.Args) != 0 || len(def.Stmts) != 1 {
		t.Fatalf("unexpected entries %+v %+v %+v", first, second, def)
	}

	tries := nodesOfKind(tree, ast.KindTry)
	if len(tries) != 1 || len(tries[0].Entries) != 1 || !tries[0].Else.Valid() {
		t.Fatalf("unexpected try %+v", tries)
	}
	catch := tree.Node(tries[0].Entries[0])
	if p := tree.Node(catch.Params[0]); p.Name != "e" || tree.TypeName(p.Type) != "RuntimeException" {
		t.Fatalf("unexpected catch parameter %+v", p)
	}

	var qualifiedThis bool
	for _, n := range nodesOfKind(tree, ast.KindThis) {
		qualifiedThis = qualifiedThis || n.Receiver.Valid()
	}
	if !qualifiedThis {
		t.Fatal("expected S.this to convert to a qualified this")
	}

	var sawLong bool
	for _, n := range nodesOfKind(tree, ast.KindLiteral) {
		if n.Text == "1_000L" && n.Lit == ast.LitInt {
			sawLong = true
		}
	}
	if !sawLong {
		t.Fatal("expected the long literal to keep its source text")
	}
}

func TestJavaComments(t *testing.T) {
	unit := parseJava(t, `
// leading
class C {
    /* block */
    int f;
}
`)
	if len(unit.Tree.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %+v", unit.Tree.Comments)
	}
	if c := unit.Tree.Comments[0]; c.Text != "// leading" || c.Pos.Line != 2 {
		t.Fatalf("unexpected comment %+v", c)
	}
	if c := unit.Tree.Comments[1]; c.Text != "/* block */" || c.Pos.Line != 4 {
		t.Fatalf("unexpected comment %+v", c)
	}
}

func TestJavaUnsupportedSyntax(t *testing.T) {
	cases := map[string]string{
		"record":             "record Point(int x) {}",
		"method reference":   "class A { Object f = String::valueOf; }",
		"try with resources": "class A { void m() { try (R r = open()) {} } }",
		"arrow switch":       "class A { void m(int x) { switch (x) { case 1 -> a(); default -> b(); } } }",
	}
	p := newTestParser(t)
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := p.ParseFile("A.java", []byte(src))
			if !errors.IsCode(err, errors.CodeNotSupported) {
				t.Fatalf("expected NOT_SUPPORTED, got %v", err)
			}
			if path, _ := errors.ContextValue(err, errors.CtxPath); path != "A.java" {
				t.Fatalf("expected path context, got %v", err)
			}
			if line, _ := errors.ContextValue(err, errors.CtxLine); line != 1 {
				t.Fatalf("expected line 1, got %v", err)
			}
		})
	}
}

func TestJavaSyntaxError(t *testing.T) {
	_, err := newTestParser(t).ParseFile("Bad.java", []byte("class A {\n  void m() { int x = ; }\n}\n"))
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if line, _ := errors.ContextValue(err, errors.CtxLine); line != 2 {
		t.Fatalf("expected error on line 2, got %v", err)
	}
}

func TestVerifyJavaScript(t *testing.T) {
	p := newTestParser(t)
	if err := p.VerifyJavaScript("A.js", []byte("var A = function() {};\nA.prototype.m = function(x) {\n    return x;\n};\n")); err != nil {
		t.Fatalf("valid output rejected: %v", err)
	}
	err := p.VerifyJavaScript("B.js", []byte("var B = function( {;\n"))
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if lang, _ := errors.ContextValue(err, errors.CtxLanguage); lang != LangJavaScript {
		t.Fatalf("expected javascript language context, got %v", err)
	}
}

func TestIsSupportedPath(t *testing.T) {
	p := newTestParser(t)
	if !p.IsSupportedPath("src/A.java") || p.IsSupportedPath("src/A.js") {
		t.Fatal("only .java sources are supported")
	}
}

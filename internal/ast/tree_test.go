// # internal/ast/tree_test.go
package ast

import "testing"

func TestTreeParentsAndAncestors(t *testing.T) {
	tree := NewTree("A.java")

	lit := NewNode(KindLiteral, Pos{Line: 3, Column: 9})
	lit.Lit = LitInt
	lit.Text = "1"
	litID := tree.Add(lit)

	assign := NewNode(KindAssign, Pos{Line: 3, Column: 5})
	assign.Op = "="
	name := NewNode(KindName, Pos{Line: 3, Column: 5})
	name.Name = "x"
	assign.Left = tree.Add(name)
	assign.Right = litID
	assignID := tree.Add(assign)

	stmt := NewNode(KindExprStmt, Pos{Line: 3, Column: 5})
	stmt.Value = assignID
	stmtID := tree.Add(stmt)

	block := NewNode(KindBlock, Pos{Line: 2, Column: 3})
	block.Stmts = []NodeID{stmtID}
	blockID := tree.Add(block)
	tree.Root = blockID

	tree.LinkParents()

	if got := tree.Parent(litID); got != assignID {
		t.Fatalf("expected literal parent %d, got %d", assignID, got)
	}
	if got := tree.Ancestor(litID, 3); got != blockID {
		t.Fatalf("expected block three levels up, got %d", got)
	}
	if got := tree.EnclosingKind(litID, KindExprStmt); got != stmtID {
		t.Fatalf("expected enclosing statement %d, got %d", stmtID, got)
	}
	if got := tree.Parent(blockID); got.Valid() {
		t.Fatalf("root must have no parent, got %d", got)
	}
	if got := tree.Position(litID); got != "A.java:3:9" {
		t.Fatalf("unexpected position %q", got)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	tree := NewTree("B.java")
	inner := tree.Add(NewNode(KindThis, Pos{}))
	paren := NewNode(KindParen, Pos{})
	paren.Value = inner
	parenID := tree.Add(paren)
	tree.LinkParents()

	var seen []Kind
	tree.Walk(parenID, func(id NodeID) bool {
		seen = append(seen, tree.Kind(id))
		return false
	})
	if len(seen) != 1 || seen[0] != KindParen {
		t.Fatalf("expected only the paren node, got %v", seen)
	}
}

func TestKindNamesComplete(t *testing.T) {
	for k := KindInvalid; k < kindCount; k++ {
		if k.String() == "unknown" {
			t.Errorf("kind %d has no name", k)
		}
	}
}

func TestModifiers(t *testing.T) {
	m := ParseModifier("public") | ParseModifier("static")
	if !m.IsStatic() || m.IsAbstract() {
		t.Fatalf("unexpected modifier set %v", m)
	}
	if m.String() != "public static" {
		t.Fatalf("unexpected modifier string %q", m.String())
	}
	if ParseModifier("sealed") != 0 {
		t.Fatal("unknown words must map to zero")
	}
}

// # internal/ast/tree.go
package ast

import (
	"fmt"
	"strings"
)

// Tree holds every node of one compilation unit. Parent links are indices
// into Nodes, so the structure owns no pointer cycles.
type Tree struct {
	File     string
	Nodes    []Node
	Root     NodeID
	Comments []Comment
}

func NewTree(file string) *Tree {
	return &Tree{File: file, Root: InvalidNode}
}

// Add appends n to the arena and returns its id. All node-valued slots of n
// that were left at their zero value must be set explicitly; use NewNode to
// get a node with every slot invalid.
func (t *Tree) Add(n Node) NodeID {
	id := NodeID(len(t.Nodes))
	n.ID = id
	n.Parent = InvalidNode
	t.Nodes = append(t.Nodes, n)
	return id
}

// NewNode returns a node of the given kind with all node slots invalid.
func NewNode(kind Kind, pos Pos) Node {
	return Node{
		Kind:     kind,
		Pos:      pos,
		Parent:   InvalidNode,
		Type:     InvalidNode,
		Receiver: InvalidNode,
		Left:     InvalidNode,
		Right:    InvalidNode,
		Cond:     InvalidNode,
		Body:     InvalidNode,
		Else:     InvalidNode,
		Value:    InvalidNode,
		Super:    InvalidNode,
	}
}

func (t *Tree) Node(id NodeID) *Node {
	if !id.Valid() || int(id) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id]
}

func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

// Adopt sets parent as the parent of every valid child.
func (t *Tree) Adopt(parent NodeID, children ...NodeID) {
	for _, c := range children {
		if n := t.Node(c); n != nil {
			n.Parent = parent
		}
	}
}

func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return InvalidNode
}

// Ancestor walks up levels parents from id.
func (t *Tree) Ancestor(id NodeID, levels int) NodeID {
	for i := 0; i < levels && id.Valid(); i++ {
		id = t.Parent(id)
	}
	return id
}

// EnclosingKind returns the nearest ancestor of the given kind.
func (t *Tree) EnclosingKind(id NodeID, kind Kind) NodeID {
	for p := t.Parent(id); p.Valid(); p = t.Parent(p) {
		if t.Kind(p) == kind {
			return p
		}
	}
	return InvalidNode
}

// Children lists the node-valued slots of id in source order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	add := func(ids ...NodeID) {
		for _, c := range ids {
			if c.Valid() {
				out = append(out, c)
			}
		}
	}
	switch n.Kind {
	case KindCompilationUnit:
		add(n.Members...)
	case KindClass:
		add(n.Super)
		add(n.Interfaces...)
		add(n.Members...)
	case KindEnum:
		add(n.Entries...)
		add(n.Members...)
	case KindEnumConstant:
		add(n.Args...)
		add(n.Members...)
	case KindField, KindLocalVar:
		add(n.Type)
		add(n.Vars...)
	case KindVariableDeclarator:
		add(n.Value)
	case KindMethod, KindConstructor:
		add(n.Type)
		add(n.Params...)
		add(n.Body)
	case KindInitializer, KindLabeled:
		add(n.Body)
	case KindParameter:
		add(n.Type)
	case KindBlock:
		add(n.Stmts...)
	case KindFor:
		add(n.Stmts...)
		add(n.Cond)
		add(n.Entries...)
		add(n.Body)
	case KindForEach:
		add(n.Vars...)
		add(n.Value, n.Body)
	case KindIf:
		add(n.Cond, n.Body, n.Else)
	case KindWhile, KindDo:
		add(n.Cond, n.Body)
	case KindTry:
		add(n.Body)
		add(n.Entries...)
		add(n.Else)
	case KindCatch:
		add(n.Params...)
		add(n.Body)
	case KindSwitch:
		add(n.Value)
		add(n.Entries...)
	case KindSwitchEntry:
		add(n.Args...)
		add(n.Stmts...)
	case KindSynchronized:
		add(n.Value, n.Body)
	case KindAssert:
		add(n.Cond, n.Value)
	case KindExplicitCtorCall, KindArrayInit:
		add(n.Args...)
	case KindMethodCall:
		add(n.Receiver)
		add(n.Args...)
	case KindNew:
		add(n.Type)
		add(n.Args...)
		add(n.Members...)
	case KindAssign, KindBinary, KindArrayAccess:
		add(n.Left, n.Right)
	case KindConditional:
		add(n.Cond, n.Left, n.Right)
	case KindCast:
		add(n.Type, n.Value)
	case KindInstanceOf:
		add(n.Value, n.Type)
	case KindArrayCreation:
		add(n.Type)
		add(n.Args...)
		add(n.Value)
	case KindLambda:
		add(n.Params...)
		add(n.Body)
	case KindFieldAccess, KindThis:
		add(n.Receiver)
	case KindClassLiteral:
		add(n.Type)
	default:
		add(n.Value)
	}
	return out
}

// Walk visits id and its descendants depth first, pre-order. Returning false
// from fn skips the children of that node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if !id.Valid() {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range t.Children(id) {
		t.Walk(c, fn)
	}
}

// LinkParents recomputes every parent index from the child slots.
func (t *Tree) LinkParents() {
	for i := range t.Nodes {
		id := NodeID(i)
		t.Adopt(id, t.Children(id)...)
	}
}

func (t *Tree) Position(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return t.File
	}
	return fmt.Sprintf("%s:%d:%d", t.File, n.Pos.Line, n.Pos.Column)
}

// TypeName renders a type node as written, without type arguments.
func (t *Tree) TypeName(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindTypeRef, KindPrimitiveType, KindVoidType:
		return n.Name + strings.Repeat("[]", n.Dims)
	}
	return ""
}

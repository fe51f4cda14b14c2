// # internal/generator/generator.go
package generator

import (
	"strings"

	"classjs/internal/ast"
	"classjs/internal/core/errors"
	"classjs/internal/emitter"
	"classjs/internal/scope"
)

const DefaultRuntimeNamespace = "stjs"

type Options struct {
	// RuntimeNamespace names the object providing extend, enumeration and
	// mainCallDisabled in the generated code.
	RuntimeNamespace string
	// DisableMainCall omits the bootstrap call after classes declaring main.
	DisableMainCall bool
}

// Result is the generated text of one compilation unit.
type Result struct {
	Source []byte
	Marks  []emitter.Mark
}

// Generator is stateless between units and may be shared by goroutines.
type Generator struct {
	opts Options
}

func New(opts Options) *Generator {
	if opts.RuntimeNamespace == "" {
		opts.RuntimeNamespace = DefaultRuntimeNamespace
	}
	return &Generator{opts: opts}
}

// Generate translates one unit. root must be the scope tree built for tree.
// On error no partial output is returned.
func (g *Generator) Generate(tree *ast.Tree, root *scope.TypeScope) (*Result, error) {
	r := &run{
		opts: g.opts,
		tree: tree,
		out:  emitter.New(),
	}
	ctx := genContext{walker: scope.NewWalker(tree, root)}
	if err := r.visit(ctx, tree.Root); err != nil {
		return nil, err
	}
	r.out.EndLine()
	return &Result{Source: r.out.Bytes(), Marks: r.out.Marks()}, nil
}

// genContext is what the visit of a node depends on besides the node
// itself. It is passed by value; nested declarations derive a new one.
type genContext struct {
	walker scope.Walker
	// superBinding is the binding of the superclass of the class being
	// generated, empty when it is the root class.
	superBinding string
}

func (c genContext) with(w scope.Walker) genContext {
	c.walker = w
	return c
}

// run holds the per-unit output state.
type run struct {
	opts    Options
	tree    *ast.Tree
	out     *emitter.Writer
	comment int
}

func (r *run) node(id ast.NodeID) *ast.Node {
	return r.tree.Node(id)
}

func (r *run) print(parts ...string) {
	for _, p := range parts {
		r.out.Print(p)
	}
}

func (r *run) unsupported(n *ast.Node, msg string) error {
	return errors.Unsupported(r.tree.File, n.Pos.Line, n.Pos.Column, msg)
}

// startLine flushes the comments preceding n and marks the line it starts.
func (r *run) startLine(n *ast.Node) {
	r.out.EndLine()
	for r.comment < len(r.tree.Comments) {
		c := r.tree.Comments[r.comment]
		if c.Pos.Line >= n.Pos.Line {
			break
		}
		r.out.PrintLn(strings.TrimRight(c.Text, "\r\n"))
		r.comment++
	}
	r.out.Mark(n.Pos.Line)
}

// visit is the single dispatch point over node kinds.
func (r *run) visit(ctx genContext, id ast.NodeID) error {
	n := r.node(id)
	if n == nil {
		return errors.Structural("visit of invalid node %d", id)
	}
	switch n.Kind {
	case ast.KindCompilationUnit:
		return r.compilationUnit(ctx, n)
	case ast.KindPackage, ast.KindImport, ast.KindEmptyMember:
		return nil
	case ast.KindClass:
		return r.class(ctx, n)
	case ast.KindEnum:
		return r.enum(ctx, n)
	case ast.KindField:
		return r.field(ctx, n)
	case ast.KindMethod:
		return r.method(ctx, n)
	case ast.KindConstructor:
		return r.constructor(ctx, n)
	case ast.KindInitializer:
		return r.unsupported(n, "initializer blocks are not supported")
	case ast.KindParameter:
		r.print(n.Name)
		return nil

	case ast.KindBlock:
		return r.block(ctx, n)
	case ast.KindLocalVar:
		if err := r.localVar(ctx, n); err != nil {
			return err
		}
		r.print(";")
		return nil
	case ast.KindLocalClass:
		return r.visit(ctx, n.Value)
	case ast.KindExprStmt:
		if err := r.visit(ctx, n.Value); err != nil {
			return err
		}
		r.print(";")
		return nil
	case ast.KindIf:
		return r.ifStmt(ctx, n)
	case ast.KindWhile:
		return r.whileStmt(ctx, n)
	case ast.KindDo:
		return r.doStmt(ctx, n)
	case ast.KindFor:
		return r.forStmt(ctx, n)
	case ast.KindForEach:
		return r.forEach(ctx, n)
	case ast.KindReturn:
		return r.jump(ctx, n, "return")
	case ast.KindThrow:
		return r.jump(ctx, n, "throw")
	case ast.KindBreak:
		r.print("break")
		if n.Name != "" {
			r.print(" ", n.Name)
		}
		r.print(";")
		return nil
	case ast.KindContinue:
		r.print("continue")
		if n.Name != "" {
			r.print(" ", n.Name)
		}
		r.print(";")
		return nil
	case ast.KindTry:
		return r.tryStmt(ctx, n)
	case ast.KindCatch:
		return r.catchClause(ctx, n)
	case ast.KindSwitch:
		return r.switchStmt(ctx, n)
	case ast.KindLabeled:
		r.print(n.Name, ": ")
		return r.visit(ctx, n.Body)
	case ast.KindEmpty:
		r.print(";")
		return nil
	case ast.KindSynchronized:
		return r.unsupported(n, "synchronized blocks are not supported")
	case ast.KindAssert:
		return r.unsupported(n, "assert statements are not supported")
	case ast.KindExplicitCtorCall:
		return r.explicitCtorCall(ctx, n)

	case ast.KindName:
		return r.name(ctx, n)
	case ast.KindFieldAccess:
		return r.fieldAccess(ctx, n)
	case ast.KindMethodCall:
		return r.methodCall(ctx, n)
	case ast.KindNew:
		return r.newExpr(ctx, n)
	case ast.KindAssign, ast.KindBinary:
		return r.binary(ctx, n)
	case ast.KindUnary:
		return r.unary(ctx, n)
	case ast.KindConditional:
		return r.conditional(ctx, n)
	case ast.KindCast:
		return r.visit(ctx, n.Value)
	case ast.KindInstanceOf:
		return r.instanceOf(ctx, n)
	case ast.KindParen:
		r.print("(")
		if err := r.visit(ctx, n.Value); err != nil {
			return err
		}
		r.print(")")
		return nil
	case ast.KindArrayAccess:
		if err := r.visit(ctx, n.Left); err != nil {
			return err
		}
		r.print("[")
		if err := r.visit(ctx, n.Right); err != nil {
			return err
		}
		r.print("]")
		return nil
	case ast.KindArrayCreation:
		return r.arrayCreation(ctx, n)
	case ast.KindArrayInit:
		r.print("[")
		if err := r.list(ctx, n.Args); err != nil {
			return err
		}
		r.print("]")
		return nil
	case ast.KindLiteral:
		r.print(literal(n))
		return nil
	case ast.KindThis:
		r.print("this")
		return nil
	case ast.KindClassLiteral:
		r.print(r.typeBinding(ctx, n.Type), ".prototype")
		return nil
	case ast.KindLambda:
		return r.lambda(ctx, n)
	case ast.KindTypeRef:
		r.print(r.typeBinding(ctx, id))
		return nil

	case ast.KindVariableDeclarator, ast.KindEnumConstant, ast.KindSuper, ast.KindSwitchEntry,
		ast.KindPrimitiveType, ast.KindVoidType, ast.KindWildcardType:
		return errors.Structural("unexpected visit of a %s node", n.Kind)
	}
	return errors.Structural("no emission rule for %s nodes", n.Kind)
}

// list emits comma separated expressions.
func (r *run) list(ctx genContext, ids []ast.NodeID) error {
	for i, id := range ids {
		if i > 0 {
			r.print(", ")
		}
		if err := r.visit(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) arguments(ctx genContext, ids []ast.NodeID) error {
	r.print("(")
	if err := r.list(ctx, ids); err != nil {
		return err
	}
	r.print(")")
	return nil
}

func (r *run) parameters(ids []ast.NodeID) {
	r.print("(")
	for i, id := range ids {
		if i > 0 {
			r.print(", ")
		}
		r.print(r.node(id).Name)
	}
	r.print(")")
}

func (r *run) compilationUnit(ctx genContext, n *ast.Node) error {
	first := true
	for _, id := range n.Members {
		switch r.tree.Kind(id) {
		case ast.KindClass, ast.KindEnum:
		default:
			continue
		}
		if !first {
			r.out.EndLine()
			r.out.PrintLn()
		}
		first = false
		if err := r.visit(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

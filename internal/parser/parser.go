// # internal/parser/parser.go
package parser

import (
	"path/filepath"
	"strings"
	"time"

	"classjs/internal/ast"
	"classjs/internal/catalog"
	"classjs/internal/core/errors"
	"classjs/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Unit is one parsed compilation unit together with what the rest of the
// pipeline needs from it: the AST, the catalog descriptors it declares and
// the binding from declaration nodes to qualified class names.
type Unit struct {
	Path    string
	Package string
	Tree    *ast.Tree
	Classes []catalog.ClassDescriptor
	Types   map[ast.NodeID]string
}

// Primary is the qualified name of the first top-level type, or "".
func (u *Unit) Primary() string {
	unit := u.Tree.Node(u.Tree.Root)
	if unit == nil {
		return ""
	}
	for _, id := range unit.Members {
		switch u.Tree.Kind(id) {
		case ast.KindClass, ast.KindEnum:
			return u.Types[id]
		}
	}
	return ""
}

// Parser is safe for concurrent use.
type Parser struct {
	loader *GrammarLoader
	pools  map[string]*ParserPool
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{loader: loader, pools: make(map[string]*ParserPool)}
	for _, lang := range []string{LangJava, LangJavaScript} {
		if grammar := loader.Language(lang); grammar != nil {
			p.pools[lang] = NewParserPool(grammar)
		}
	}
	return p
}

func (p *Parser) IsSupportedPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".java")
}

// ParseFile parses Java source into a Unit.
func (p *Parser) ParseFile(path string, content []byte) (*Unit, error) {
	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(LangJava).Observe(time.Since(start).Seconds())
	}()

	pool := p.pools[LangJava]
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, "grammar not loaded: java")
	}

	parser := pool.Get()
	defer pool.Put(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	ctx := &ExtractionContext{Source: content, Path: path}
	if root.HasError() {
		return nil, ctx.syntaxError(root)
	}

	conv := newConverter(ctx)
	astTree, err := conv.convertProgram(root)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxLanguage, LangJava)
	}
	astTree.Comments = collectComments(ctx, root)

	unit := &Unit{Path: path, Tree: astTree}
	extractDescriptors(unit)
	return unit, nil
}

// VerifyJavaScript parses generated output and reports the first syntax
// error, if any.
func (p *Parser) VerifyJavaScript(path string, content []byte) error {
	pool := p.pools[LangJavaScript]
	if pool == nil {
		return errors.New(errors.CodeInternal, "grammar not loaded: javascript")
	}
	parser := pool.Get()
	defer pool.Put(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	ctx := &ExtractionContext{Source: content, Path: path}
	return errors.AddContext(ctx.syntaxError(root), errors.CtxLanguage, LangJavaScript)
}

// ExtractionContext carries the source of the file being converted.
type ExtractionContext struct {
	Source []byte
	Path   string
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Pos(node *sitter.Node) ast.Pos {
	p := node.StartPosition()
	return ast.Pos{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (c *ExtractionContext) notSupported(node *sitter.Node, what string) error {
	pos := c.Pos(node)
	return errors.AddContext(
		errors.AddContext(
			errors.AddContext(errors.New(errors.CodeNotSupported, what+" is not supported"), errors.CtxPath, c.Path),
			errors.CtxLine, pos.Line),
		errors.CtxColumn, pos.Column)
}

func (c *ExtractionContext) syntaxError(root *sitter.Node) error {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pos := c.Pos(bad)
	err := errors.New(errors.CodeValidationError, "syntax error")
	err = errors.AddContext(err, errors.CtxPath, c.Path)
	err = errors.AddContext(err, errors.CtxLine, pos.Line)
	return errors.AddContext(err, errors.CtxColumn, pos.Column)
}

func firstError(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if bad := firstError(node.Child(i)); bad != nil {
			return bad
		}
	}
	return node
}

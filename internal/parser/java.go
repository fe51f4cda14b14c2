// # internal/parser/java.go
package parser

import (
	"strings"

	"classjs/internal/ast"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// converter turns a tree-sitter-java CST into the arena AST. Node kinds with
// no AST counterpart are reported as NOT_SUPPORTED at their position.
type converter struct {
	ctx  *ExtractionContext
	tree *ast.Tree
}

func newConverter(ctx *ExtractionContext) *converter {
	return &converter{ctx: ctx, tree: ast.NewTree(ctx.Path)}
}

func isComment(n *sitter.Node) bool {
	k := n.Kind()
	return k == "line_comment" || k == "block_comment"
}

// named returns the named, non-comment children of n.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.ChildCount(); i++ {
		ch := n.Child(i)
		if ch == nil || !ch.IsNamed() || isComment(ch) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func childOfKind(n *sitter.Node, kinds ...string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		ch := n.Child(i)
		if ch == nil {
			continue
		}
		for _, k := range kinds {
			if ch.Kind() == k {
				return ch
			}
		}
	}
	return nil
}

func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	cursor := n.Walk()
	defer cursor.Close()
	nodes := n.ChildrenByFieldName(field, cursor)
	out := make([]*sitter.Node, 0, len(nodes))
	for i := range nodes {
		out = append(out, &nodes[i])
	}
	return out
}

// unparen strips the parentheses the grammar wraps around conditions.
func unparen(n *sitter.Node) *sitter.Node {
	if n != nil && n.Kind() == "parenthesized_expression" {
		if inner := named(n); len(inner) == 1 {
			return inner[0]
		}
	}
	return n
}

func (c *converter) node(kind ast.Kind, n *sitter.Node) ast.Node {
	return ast.NewNode(kind, c.ctx.Pos(n))
}

func (c *converter) convertProgram(root *sitter.Node) (*ast.Tree, error) {
	unit := c.node(ast.KindCompilationUnit, root)
	for _, ch := range named(root) {
		var id ast.NodeID
		var err error
		switch ch.Kind() {
		case "package_declaration":
			n := c.node(ast.KindPackage, ch)
			n.Name = c.ctx.Text(childOfKind(ch, "scoped_identifier", "identifier"))
			id = c.tree.Add(n)
		case "import_declaration":
			n := c.node(ast.KindImport, ch)
			n.Name = c.ctx.Text(childOfKind(ch, "scoped_identifier", "identifier"))
			n.Static = childOfKind(ch, "static") != nil
			n.Flag = childOfKind(ch, "asterisk") != nil
			id = c.tree.Add(n)
		default:
			id, err = c.convertTypeDecl(ch)
		}
		if err != nil {
			return nil, err
		}
		if id.Valid() {
			unit.Members = append(unit.Members, id)
		}
	}
	c.tree.Root = c.tree.Add(unit)
	c.tree.LinkParents()
	return c.tree, nil
}

// convertTypeDecl handles class, interface and enum declarations.
// Annotation type declarations produce no node.
func (c *converter) convertTypeDecl(n *sitter.Node) (ast.NodeID, error) {
	switch n.Kind() {
	case "class_declaration", "interface_declaration":
		decl := c.node(ast.KindClass, n)
		decl.Name = c.ctx.Text(n.ChildByFieldName("name"))
		decl.Mods, decl.Annotations = c.modifiers(n)
		decl.Flag = n.Kind() == "interface_declaration"
		if sc := n.ChildByFieldName("superclass"); sc != nil {
			types := named(sc)
			if len(types) > 0 {
				t, err := c.convertType(types[len(types)-1])
				if err != nil {
					return ast.InvalidNode, err
				}
				decl.Super = t
			}
		}
		list := n.ChildByFieldName("interfaces")
		if list == nil {
			list = childOfKind(n, "extends_interfaces")
		}
		ifaces, err := c.typeList(list)
		if err != nil {
			return ast.InvalidNode, err
		}
		decl.Interfaces = ifaces
		members, err := c.convertBody(n.ChildByFieldName("body"))
		if err != nil {
			return ast.InvalidNode, err
		}
		decl.Members = members
		return c.tree.Add(decl), nil

	case "enum_declaration":
		decl := c.node(ast.KindEnum, n)
		decl.Name = c.ctx.Text(n.ChildByFieldName("name"))
		decl.Mods, decl.Annotations = c.modifiers(n)
		ifaces, err := c.typeList(n.ChildByFieldName("interfaces"))
		if err != nil {
			return ast.InvalidNode, err
		}
		decl.Interfaces = ifaces
		for _, ch := range named(n.ChildByFieldName("body")) {
			switch ch.Kind() {
			case "enum_constant":
				ec := c.node(ast.KindEnumConstant, ch)
				ec.Name = c.ctx.Text(ch.ChildByFieldName("name"))
				args, err := c.arguments(ch.ChildByFieldName("arguments"))
				if err != nil {
					return ast.InvalidNode, err
				}
				ec.Args = args
				if body := ch.ChildByFieldName("body"); body != nil {
					ms, err := c.convertBody(body)
					if err != nil {
						return ast.InvalidNode, err
					}
					ec.Members = ms
				}
				decl.Entries = append(decl.Entries, c.tree.Add(ec))
			case "enum_body_declarations":
				ms, err := c.convertMembers(named(ch))
				if err != nil {
					return ast.InvalidNode, err
				}
				decl.Members = append(decl.Members, ms...)
			}
		}
		return c.tree.Add(decl), nil

	case "annotation_type_declaration":
		return ast.InvalidNode, nil
	}
	return ast.InvalidNode, c.ctx.notSupported(n, strings.ReplaceAll(n.Kind(), "_", " "))
}

func (c *converter) typeList(n *sitter.Node) ([]ast.NodeID, error) {
	if n == nil {
		return nil, nil
	}
	if tl := childOfKind(n, "type_list"); tl != nil {
		n = tl
	}
	var out []ast.NodeID
	for _, t := range named(n) {
		id, err := c.convertType(t)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (c *converter) modifiers(n *sitter.Node) (ast.Modifiers, []string) {
	mods := childOfKind(n, "modifiers")
	if mods == nil {
		return 0, nil
	}
	var set ast.Modifiers
	var annotations []string
	for i := uint(0); i < mods.ChildCount(); i++ {
		ch := mods.Child(i)
		switch ch.Kind() {
		case "marker_annotation", "annotation":
			annotations = append(annotations, c.ctx.Text(ch.ChildByFieldName("name")))
		default:
			set |= ast.ParseModifier(ch.Kind())
		}
	}
	return set, annotations
}

func (c *converter) convertBody(body *sitter.Node) ([]ast.NodeID, error) {
	return c.convertMembers(named(body))
}

func (c *converter) convertMembers(members []*sitter.Node) ([]ast.NodeID, error) {
	var out []ast.NodeID
	for _, m := range members {
		id, err := c.convertMember(m)
		if err != nil {
			return nil, err
		}
		if id.Valid() {
			out = append(out, id)
		}
	}
	return out, nil
}

func (c *converter) convertMember(n *sitter.Node) (ast.NodeID, error) {
	switch n.Kind() {
	case "field_declaration", "constant_declaration":
		f := c.node(ast.KindField, n)
		f.Mods, f.Annotations = c.modifiers(n)
		if n.Kind() == "constant_declaration" {
			f.Mods |= ast.ModStatic | ast.ModFinal
		}
		typ, err := c.convertType(n.ChildByFieldName("type"))
		if err != nil {
			return ast.InvalidNode, err
		}
		f.Type = typ
		vars, err := c.declarators(n)
		if err != nil {
			return ast.InvalidNode, err
		}
		f.Vars = vars
		return c.tree.Add(f), nil

	case "method_declaration":
		m := c.node(ast.KindMethod, n)
		m.Name = c.ctx.Text(n.ChildByFieldName("name"))
		m.Mods, m.Annotations = c.modifiers(n)
		typ, err := c.convertType(n.ChildByFieldName("type"))
		if err != nil {
			return ast.InvalidNode, err
		}
		m.Type = typ
		params, err := c.parameters(n.ChildByFieldName("parameters"))
		if err != nil {
			return ast.InvalidNode, err
		}
		m.Params = params
		if body := n.ChildByFieldName("body"); body != nil {
			b, err := c.convertStmt(body)
			if err != nil {
				return ast.InvalidNode, err
			}
			m.Body = b
		}
		return c.tree.Add(m), nil

	case "constructor_declaration":
		m := c.node(ast.KindConstructor, n)
		m.Name = c.ctx.Text(n.ChildByFieldName("name"))
		m.Mods, m.Annotations = c.modifiers(n)
		params, err := c.parameters(n.ChildByFieldName("parameters"))
		if err != nil {
			return ast.InvalidNode, err
		}
		m.Params = params
		body, err := c.block(n.ChildByFieldName("body"))
		if err != nil {
			return ast.InvalidNode, err
		}
		m.Body = body
		return c.tree.Add(m), nil

	case "block", "static_initializer":
		init := c.node(ast.KindInitializer, n)
		blk := n
		if n.Kind() == "static_initializer" {
			init.Mods = ast.ModStatic
			blk = childOfKind(n, "block")
		}
		body, err := c.block(blk)
		if err != nil {
			return ast.InvalidNode, err
		}
		init.Body = body
		return c.tree.Add(init), nil

	case "class_declaration", "interface_declaration", "enum_declaration", "annotation_type_declaration":
		return c.convertTypeDecl(n)
	}
	return ast.InvalidNode, c.ctx.notSupported(n, strings.ReplaceAll(n.Kind(), "_", " "))
}

func (c *converter) declarators(n *sitter.Node) ([]ast.NodeID, error) {
	var out []ast.NodeID
	for _, d := range fieldChildren(n, "declarator") {
		v := c.node(ast.KindVariableDeclarator, d)
		v.Name = c.ctx.Text(d.ChildByFieldName("name"))
		v.Dims = countDims(c.ctx.Text(d.ChildByFieldName("dimensions")))
		if val := d.ChildByFieldName("value"); val != nil {
			id, err := c.convertExpr(val)
			if err != nil {
				return nil, err
			}
			v.Value = id
		}
		out = append(out, c.tree.Add(v))
	}
	return out, nil
}

func countDims(text string) int {
	return strings.Count(text, "[")
}

func (c *converter) parameters(n *sitter.Node) ([]ast.NodeID, error) {
	var out []ast.NodeID
	for _, p := range named(n) {
		switch p.Kind() {
		case "formal_parameter":
			id, err := c.parameter(p, p.ChildByFieldName("type"), p.ChildByFieldName("name"), p.ChildByFieldName("dimensions"), false)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		case "spread_parameter":
			decl := childOfKind(p, "variable_declarator")
			if decl == nil {
				return nil, c.ctx.notSupported(p, "spread parameter")
			}
			var typ *sitter.Node
			for _, ch := range named(p) {
				if ch.Kind() != "modifiers" && ch.Kind() != "variable_declarator" {
					typ = ch
					break
				}
			}
			id, err := c.parameter(p, typ, decl.ChildByFieldName("name"), nil, true)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		case "receiver_parameter":
			continue
		default:
			return nil, c.ctx.notSupported(p, strings.ReplaceAll(p.Kind(), "_", " "))
		}
	}
	return out, nil
}

func (c *converter) parameter(n, typ, name, dims *sitter.Node, varargs bool) (ast.NodeID, error) {
	param := c.node(ast.KindParameter, n)
	param.Name = c.ctx.Text(name)
	param.Flag = varargs
	if typ != nil {
		t, err := c.convertType(typ)
		if err != nil {
			return ast.InvalidNode, err
		}
		if tn := c.tree.Node(t); tn != nil {
			tn.Dims += countDims(c.ctx.Text(dims))
			if varargs {
				tn.Dims++
			}
		}
		param.Type = t
	}
	return c.tree.Add(param), nil
}

// typeName renders a (possibly scoped, possibly generic) type without its
// type arguments.
func (c *converter) typeName(n *sitter.Node) string {
	switch n.Kind() {
	case "scoped_type_identifier":
		parts := named(n)
		if len(parts) < 2 {
			return c.ctx.Text(n)
		}
		return c.typeName(parts[0]) + "." + c.ctx.Text(parts[len(parts)-1])
	case "generic_type":
		parts := named(n)
		if len(parts) == 0 {
			return c.ctx.Text(n)
		}
		return c.typeName(parts[0])
	}
	return c.ctx.Text(n)
}

func (c *converter) convertType(n *sitter.Node) (ast.NodeID, error) {
	if n == nil {
		return ast.InvalidNode, nil
	}
	switch n.Kind() {
	case "void_type":
		t := c.node(ast.KindVoidType, n)
		t.Name = "void"
		return c.tree.Add(t), nil
	case "integral_type", "floating_point_type", "boolean_type":
		t := c.node(ast.KindPrimitiveType, n)
		t.Name = c.ctx.Text(n)
		return c.tree.Add(t), nil
	case "type_identifier", "scoped_type_identifier", "generic_type", "identifier", "scoped_identifier":
		t := c.node(ast.KindTypeRef, n)
		t.Name = c.typeName(n)
		return c.tree.Add(t), nil
	case "array_type":
		id, err := c.convertType(n.ChildByFieldName("element"))
		if err != nil {
			return ast.InvalidNode, err
		}
		if t := c.tree.Node(id); t != nil {
			t.Dims += countDims(c.ctx.Text(n.ChildByFieldName("dimensions")))
		}
		return id, nil
	case "annotated_type":
		parts := named(n)
		return c.convertType(parts[len(parts)-1])
	case "wildcard":
		return c.tree.Add(c.node(ast.KindWildcardType, n)), nil
	}
	return ast.InvalidNode, c.ctx.notSupported(n, strings.ReplaceAll(n.Kind(), "_", " "))
}

func (c *converter) block(n *sitter.Node) (ast.NodeID, error) {
	blk := c.node(ast.KindBlock, n)
	for _, ch := range named(n) {
		id, err := c.convertStmt(ch)
		if err != nil {
			return ast.InvalidNode, err
		}
		if id.Valid() {
			blk.Stmts = append(blk.Stmts, id)
		}
	}
	return c.tree.Add(blk), nil
}

func (c *converter) convertStmt(n *sitter.Node) (ast.NodeID, error) {
	switch n.Kind() {
	case "block", "constructor_body":
		return c.block(n)

	case "local_variable_declaration":
		lv := c.node(ast.KindLocalVar, n)
		lv.Mods, lv.Annotations = c.modifiers(n)
		typ, err := c.convertType(n.ChildByFieldName("type"))
		if err != nil {
			return ast.InvalidNode, err
		}
		lv.Type = typ
		vars, err := c.declarators(n)
		if err != nil {
			return ast.InvalidNode, err
		}
		lv.Vars = vars
		return c.tree.Add(lv), nil

	case "expression_statement":
		parts := named(n)
		if len(parts) == 0 {
			return c.tree.Add(c.node(ast.KindEmpty, n)), nil
		}
		if parts[0].Kind() == "switch_expression" {
			return c.switchStmt(parts[0])
		}
		val, err := c.convertExpr(parts[0])
		if err != nil {
			return ast.InvalidNode, err
		}
		s := c.node(ast.KindExprStmt, n)
		s.Value = val
		return c.tree.Add(s), nil

	case "if_statement":
		s := c.node(ast.KindIf, n)
		var err error
		if s.Cond, err = c.convertExpr(unparen(n.ChildByFieldName("condition"))); err != nil {
			return ast.InvalidNode, err
		}
		if s.Body, err = c.convertStmt(n.ChildByFieldName("consequence")); err != nil {
			return ast.InvalidNode, err
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if s.Else, err = c.convertStmt(alt); err != nil {
				return ast.InvalidNode, err
			}
		}
		return c.tree.Add(s), nil

	case "while_statement", "do_statement":
		kind := ast.KindWhile
		if n.Kind() == "do_statement" {
			kind = ast.KindDo
		}
		s := c.node(kind, n)
		var err error
		if s.Cond, err = c.convertExpr(unparen(n.ChildByFieldName("condition"))); err != nil {
			return ast.InvalidNode, err
		}
		if s.Body, err = c.convertStmt(n.ChildByFieldName("body")); err != nil {
			return ast.InvalidNode, err
		}
		return c.tree.Add(s), nil

	case "for_statement":
		s := c.node(ast.KindFor, n)
		for _, init := range fieldChildren(n, "init") {
			var id ast.NodeID
			var err error
			if init.Kind() == "local_variable_declaration" {
				id, err = c.convertStmt(init)
			} else {
				id, err = c.convertExpr(init)
			}
			if err != nil {
				return ast.InvalidNode, err
			}
			s.Stmts = append(s.Stmts, id)
		}
		if cond := n.ChildByFieldName("condition"); cond != nil {
			id, err := c.convertExpr(cond)
			if err != nil {
				return ast.InvalidNode, err
			}
			s.Cond = id
		}
		for _, upd := range fieldChildren(n, "update") {
			id, err := c.convertExpr(upd)
			if err != nil {
				return ast.InvalidNode, err
			}
			s.Entries = append(s.Entries, id)
		}
		body, err := c.convertStmt(n.ChildByFieldName("body"))
		if err != nil {
			return ast.InvalidNode, err
		}
		s.Body = body
		return c.tree.Add(s), nil

	case "enhanced_for_statement":
		s := c.node(ast.KindForEach, n)
		param, err := c.parameter(n, n.ChildByFieldName("type"), n.ChildByFieldName("name"), n.ChildByFieldName("dimensions"), false)
		if err != nil {
			return ast.InvalidNode, err
		}
		s.Vars = []ast.NodeID{param}
		if s.Value, err = c.convertExpr(n.ChildByFieldName("value")); err != nil {
			return ast.InvalidNode, err
		}
		if s.Body, err = c.convertStmt(n.ChildByFieldName("body")); err != nil {
			return ast.InvalidNode, err
		}
		return c.tree.Add(s), nil

	case "return_statement", "throw_statement":
		kind := ast.KindReturn
		if n.Kind() == "throw_statement" {
			kind = ast.KindThrow
		}
		s := c.node(kind, n)
		if parts := named(n); len(parts) > 0 {
			val, err := c.convertExpr(parts[0])
			if err != nil {
				return ast.InvalidNode, err
			}
			s.Value = val
		}
		return c.tree.Add(s), nil

	case "break_statement", "continue_statement":
		kind := ast.KindBreak
		if n.Kind() == "continue_statement" {
			kind = ast.KindContinue
		}
		s := c.node(kind, n)
		s.Name = c.ctx.Text(childOfKind(n, "identifier"))
		return c.tree.Add(s), nil

	case "try_statement":
		s := c.node(ast.KindTry, n)
		body, err := c.block(n.ChildByFieldName("body"))
		if err != nil {
			return ast.InvalidNode, err
		}
		s.Body = body
		for _, ch := range named(n) {
			switch ch.Kind() {
			case "catch_clause":
				id, err := c.catchClause(ch)
				if err != nil {
					return ast.InvalidNode, err
				}
				s.Entries = append(s.Entries, id)
			case "finally_clause":
				fin, err := c.block(childOfKind(ch, "block"))
				if err != nil {
					return ast.InvalidNode, err
				}
				s.Else = fin
			}
		}
		return c.tree.Add(s), nil

	case "switch_expression":
		return c.switchStmt(n)

	case "labeled_statement":
		s := c.node(ast.KindLabeled, n)
		s.Name = c.ctx.Text(childOfKind(n, "identifier"))
		parts := named(n)
		body, err := c.convertStmt(parts[len(parts)-1])
		if err != nil {
			return ast.InvalidNode, err
		}
		s.Body = body
		return c.tree.Add(s), nil

	case "synchronized_statement":
		s := c.node(ast.KindSynchronized, n)
		var err error
		if s.Value, err = c.convertExpr(unparen(childOfKind(n, "parenthesized_expression"))); err != nil {
			return ast.InvalidNode, err
		}
		if s.Body, err = c.block(n.ChildByFieldName("body")); err != nil {
			return ast.InvalidNode, err
		}
		return c.tree.Add(s), nil

	case "assert_statement":
		s := c.node(ast.KindAssert, n)
		parts := named(n)
		var err error
		if len(parts) > 0 {
			if s.Cond, err = c.convertExpr(parts[0]); err != nil {
				return ast.InvalidNode, err
			}
		}
		if len(parts) > 1 {
			if s.Value, err = c.convertExpr(parts[1]); err != nil {
				return ast.InvalidNode, err
			}
		}
		return c.tree.Add(s), nil

	case "explicit_constructor_invocation":
		s := c.node(ast.KindExplicitCtorCall, n)
		if ctor := n.ChildByFieldName("constructor"); ctor != nil {
			s.Flag = ctor.Kind() == "this"
		}
		args, err := c.arguments(n.ChildByFieldName("arguments"))
		if err != nil {
			return ast.InvalidNode, err
		}
		s.Args = args
		return c.tree.Add(s), nil

	case "class_declaration", "interface_declaration", "enum_declaration":
		decl, err := c.convertTypeDecl(n)
		if err != nil {
			return ast.InvalidNode, err
		}
		s := c.node(ast.KindLocalClass, n)
		s.Value = decl
		return c.tree.Add(s), nil
	}
	return ast.InvalidNode, c.ctx.notSupported(n, strings.ReplaceAll(n.Kind(), "_", " "))
}

func (c *converter) catchClause(n *sitter.Node) (ast.NodeID, error) {
	cc := c.node(ast.KindCatch, n)
	param := childOfKind(n, "catch_formal_parameter")
	if param != nil {
		var typ *sitter.Node
		if ct := childOfKind(param, "catch_type"); ct != nil {
			if types := named(ct); len(types) > 0 {
				typ = types[0]
			}
		}
		id, err := c.parameter(param, typ, param.ChildByFieldName("name"), nil, false)
		if err != nil {
			return ast.InvalidNode, err
		}
		cc.Params = []ast.NodeID{id}
	}
	body, err := c.block(n.ChildByFieldName("body"))
	if err != nil {
		return ast.InvalidNode, err
	}
	cc.Body = body
	return c.tree.Add(cc), nil
}

// switchStmt converts a statement-position switch. Each case label becomes
// its own entry; statements belong to the last label of their group.
func (c *converter) switchStmt(n *sitter.Node) (ast.NodeID, error) {
	s := c.node(ast.KindSwitch, n)
	sel, err := c.convertExpr(unparen(n.ChildByFieldName("condition")))
	if err != nil {
		return ast.InvalidNode, err
	}
	s.Value = sel
	for _, group := range named(n.ChildByFieldName("body")) {
		if group.Kind() != "switch_block_statement_group" {
			return ast.InvalidNode, c.ctx.notSupported(group, "arrow switch rule")
		}
		var entries []*ast.Node
		for _, ch := range named(group) {
			if ch.Kind() == "switch_label" {
				e := c.node(ast.KindSwitchEntry, ch)
				for _, label := range named(ch) {
					id, err := c.convertExpr(label)
					if err != nil {
						return ast.InvalidNode, err
					}
					e.Args = append(e.Args, id)
				}
				entries = append(entries, &e)
				continue
			}
			if len(entries) == 0 {
				continue
			}
			id, err := c.convertStmt(ch)
			if err != nil {
				return ast.InvalidNode, err
			}
			last := entries[len(entries)-1]
			last.Stmts = append(last.Stmts, id)
		}
		for _, e := range entries {
			s.Entries = append(s.Entries, c.tree.Add(*e))
		}
	}
	return c.tree.Add(s), nil
}

func (c *converter) arguments(n *sitter.Node) ([]ast.NodeID, error) {
	var out []ast.NodeID
	for _, a := range named(n) {
		id, err := c.convertExpr(a)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

var literalKinds = map[string]ast.LiteralKind{
	"decimal_integer_literal":        ast.LitInt,
	"hex_integer_literal":            ast.LitInt,
	"octal_integer_literal":          ast.LitInt,
	"binary_integer_literal":         ast.LitInt,
	"decimal_floating_point_literal": ast.LitFloat,
	"hex_floating_point_literal":     ast.LitFloat,
	"string_literal":                 ast.LitString,
	"character_literal":              ast.LitChar,
	"true":                           ast.LitBool,
	"false":                          ast.LitBool,
	"null_literal":                   ast.LitNull,
}

func (c *converter) convertExpr(n *sitter.Node) (ast.NodeID, error) {
	if n == nil {
		return ast.InvalidNode, nil
	}
	if lit, ok := literalKinds[n.Kind()]; ok {
		if lit == ast.LitString && strings.HasPrefix(c.ctx.Text(n), `"""`) {
			return ast.InvalidNode, c.ctx.notSupported(n, "text block")
		}
		e := c.node(ast.KindLiteral, n)
		e.Lit = lit
		e.Text = c.ctx.Text(n)
		return c.tree.Add(e), nil
	}

	switch n.Kind() {
	case "identifier":
		e := c.node(ast.KindName, n)
		e.Name = c.ctx.Text(n)
		return c.tree.Add(e), nil

	case "this":
		return c.tree.Add(c.node(ast.KindThis, n)), nil

	case "super":
		return c.tree.Add(c.node(ast.KindSuper, n)), nil

	case "field_access":
		obj, err := c.convertExpr(n.ChildByFieldName("object"))
		if err != nil {
			return ast.InvalidNode, err
		}
		field := n.ChildByFieldName("field")
		if field != nil && field.Kind() == "this" {
			// Outer.this: the qualifier has no runtime meaning in the output.
			e := c.node(ast.KindThis, n)
			e.Receiver = obj
			return c.tree.Add(e), nil
		}
		e := c.node(ast.KindFieldAccess, n)
		e.Receiver = obj
		e.Name = c.ctx.Text(field)
		return c.tree.Add(e), nil

	case "method_invocation":
		e := c.node(ast.KindMethodCall, n)
		e.Name = c.ctx.Text(n.ChildByFieldName("name"))
		if obj := n.ChildByFieldName("object"); obj != nil {
			id, err := c.convertExpr(obj)
			if err != nil {
				return ast.InvalidNode, err
			}
			e.Receiver = id
		}
		args, err := c.arguments(n.ChildByFieldName("arguments"))
		if err != nil {
			return ast.InvalidNode, err
		}
		e.Args = args
		return c.tree.Add(e), nil

	case "object_creation_expression":
		e := c.node(ast.KindNew, n)
		typ, err := c.convertType(n.ChildByFieldName("type"))
		if err != nil {
			return ast.InvalidNode, err
		}
		e.Type = typ
		if e.Args, err = c.arguments(n.ChildByFieldName("arguments")); err != nil {
			return ast.InvalidNode, err
		}
		if body := childOfKind(n, "class_body"); body != nil {
			e.Flag = true
			if e.Members, err = c.convertBody(body); err != nil {
				return ast.InvalidNode, err
			}
		}
		return c.tree.Add(e), nil

	case "assignment_expression", "binary_expression":
		kind := ast.KindAssign
		if n.Kind() == "binary_expression" {
			kind = ast.KindBinary
		}
		e := c.node(kind, n)
		e.Op = c.ctx.Text(n.ChildByFieldName("operator"))
		var err error
		if e.Left, err = c.convertExpr(n.ChildByFieldName("left")); err != nil {
			return ast.InvalidNode, err
		}
		if e.Right, err = c.convertExpr(n.ChildByFieldName("right")); err != nil {
			return ast.InvalidNode, err
		}
		return c.tree.Add(e), nil

	case "unary_expression":
		e := c.node(ast.KindUnary, n)
		e.Op = c.ctx.Text(n.ChildByFieldName("operator"))
		val, err := c.convertExpr(n.ChildByFieldName("operand"))
		if err != nil {
			return ast.InvalidNode, err
		}
		e.Value = val
		return c.tree.Add(e), nil

	case "update_expression":
		e := c.node(ast.KindUnary, n)
		for i := uint(0); i < n.ChildCount(); i++ {
			ch := n.Child(i)
			if ch.IsNamed() {
				if i == 0 {
					e.Flag = true
				}
				val, err := c.convertExpr(ch)
				if err != nil {
					return ast.InvalidNode, err
				}
				e.Value = val
			} else {
				e.Op = ch.Kind()
			}
		}
		return c.tree.Add(e), nil

	case "ternary_expression":
		e := c.node(ast.KindConditional, n)
		var err error
		if e.Cond, err = c.convertExpr(n.ChildByFieldName("condition")); err != nil {
			return ast.InvalidNode, err
		}
		if e.Left, err = c.convertExpr(n.ChildByFieldName("consequence")); err != nil {
			return ast.InvalidNode, err
		}
		if e.Right, err = c.convertExpr(n.ChildByFieldName("alternative")); err != nil {
			return ast.InvalidNode, err
		}
		return c.tree.Add(e), nil

	case "cast_expression":
		e := c.node(ast.KindCast, n)
		types := fieldChildren(n, "type")
		if len(types) > 0 {
			t, err := c.convertType(types[0])
			if err != nil {
				return ast.InvalidNode, err
			}
			e.Type = t
		}
		val, err := c.convertExpr(n.ChildByFieldName("value"))
		if err != nil {
			return ast.InvalidNode, err
		}
		e.Value = val
		return c.tree.Add(e), nil

	case "instanceof_expression":
		if n.ChildByFieldName("name") != nil || n.ChildByFieldName("pattern") != nil {
			return ast.InvalidNode, c.ctx.notSupported(n, "instanceof pattern")
		}
		e := c.node(ast.KindInstanceOf, n)
		var err error
		if e.Value, err = c.convertExpr(n.ChildByFieldName("left")); err != nil {
			return ast.InvalidNode, err
		}
		if e.Type, err = c.convertType(n.ChildByFieldName("right")); err != nil {
			return ast.InvalidNode, err
		}
		return c.tree.Add(e), nil

	case "parenthesized_expression":
		e := c.node(ast.KindParen, n)
		parts := named(n)
		if len(parts) > 0 {
			val, err := c.convertExpr(parts[0])
			if err != nil {
				return ast.InvalidNode, err
			}
			e.Value = val
		}
		return c.tree.Add(e), nil

	case "array_access":
		e := c.node(ast.KindArrayAccess, n)
		var err error
		if e.Left, err = c.convertExpr(n.ChildByFieldName("array")); err != nil {
			return ast.InvalidNode, err
		}
		if e.Right, err = c.convertExpr(n.ChildByFieldName("index")); err != nil {
			return ast.InvalidNode, err
		}
		return c.tree.Add(e), nil

	case "array_creation_expression":
		e := c.node(ast.KindArrayCreation, n)
		typ, err := c.convertType(n.ChildByFieldName("type"))
		if err != nil {
			return ast.InvalidNode, err
		}
		e.Type = typ
		for _, ch := range named(n) {
			switch ch.Kind() {
			case "dimensions_expr":
				parts := named(ch)
				if len(parts) == 0 {
					continue
				}
				id, err := c.convertExpr(parts[0])
				if err != nil {
					return ast.InvalidNode, err
				}
				e.Args = append(e.Args, id)
				e.Dims++
			case "dimensions":
				e.Dims += countDims(c.ctx.Text(ch))
			}
		}
		if val := n.ChildByFieldName("value"); val != nil {
			if e.Value, err = c.convertExpr(val); err != nil {
				return ast.InvalidNode, err
			}
		}
		return c.tree.Add(e), nil

	case "array_initializer":
		e := c.node(ast.KindArrayInit, n)
		for _, el := range named(n) {
			id, err := c.convertExpr(el)
			if err != nil {
				return ast.InvalidNode, err
			}
			e.Args = append(e.Args, id)
		}
		return c.tree.Add(e), nil

	case "class_literal":
		e := c.node(ast.KindClassLiteral, n)
		parts := named(n)
		if len(parts) > 0 {
			t, err := c.convertType(parts[0])
			if err != nil {
				return ast.InvalidNode, err
			}
			e.Type = t
		}
		return c.tree.Add(e), nil

	case "lambda_expression":
		return c.lambda(n)
	}
	return ast.InvalidNode, c.ctx.notSupported(n, strings.ReplaceAll(n.Kind(), "_", " "))
}

func (c *converter) lambda(n *sitter.Node) (ast.NodeID, error) {
	e := c.node(ast.KindLambda, n)
	params := n.ChildByFieldName("parameters")
	switch {
	case params == nil:
	case params.Kind() == "identifier":
		p := c.node(ast.KindParameter, params)
		p.Name = c.ctx.Text(params)
		e.Params = []ast.NodeID{c.tree.Add(p)}
	case params.Kind() == "inferred_parameters":
		for _, id := range named(params) {
			p := c.node(ast.KindParameter, id)
			p.Name = c.ctx.Text(id)
			e.Params = append(e.Params, c.tree.Add(p))
		}
	default:
		ps, err := c.parameters(params)
		if err != nil {
			return ast.InvalidNode, err
		}
		e.Params = ps
	}
	body := n.ChildByFieldName("body")
	var err error
	if body != nil && body.Kind() == "block" {
		e.Body, err = c.block(body)
	} else {
		e.Body, err = c.convertExpr(body)
	}
	if err != nil {
		return ast.InvalidNode, err
	}
	return c.tree.Add(e), nil
}

func collectComments(ctx *ExtractionContext, root *sitter.Node) []ast.Comment {
	var out []ast.Comment
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if isComment(n) {
			out = append(out, ast.Comment{Pos: ctx.Pos(n), Text: ctx.Text(n)})
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

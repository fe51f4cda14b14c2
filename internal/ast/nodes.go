// # internal/ast/nodes.go
package ast

// NodeID indexes a node in a Tree's arena.
type NodeID int32

const InvalidNode NodeID = -1

func (id NodeID) Valid() bool {
	return id >= 0
}

type Kind uint8

const (
	KindInvalid Kind = iota

	// Declarations.
	KindCompilationUnit
	KindPackage
	KindImport
	KindClass
	KindEnum
	KindEnumConstant
	KindField
	KindVariableDeclarator
	KindMethod
	KindConstructor
	KindInitializer
	KindParameter
	KindEmptyMember

	// Statements.
	KindBlock
	KindLocalVar
	KindLocalClass
	KindExprStmt
	KindIf
	KindWhile
	KindDo
	KindFor
	KindForEach
	KindReturn
	KindBreak
	KindContinue
	KindThrow
	KindTry
	KindCatch
	KindSwitch
	KindSwitchEntry
	KindLabeled
	KindEmpty
	KindSynchronized
	KindAssert
	KindExplicitCtorCall

	// Expressions.
	KindName
	KindFieldAccess
	KindMethodCall
	KindNew
	KindAssign
	KindBinary
	KindUnary
	KindConditional
	KindCast
	KindInstanceOf
	KindParen
	KindArrayAccess
	KindArrayCreation
	KindArrayInit
	KindLiteral
	KindThis
	KindSuper
	KindClassLiteral
	KindLambda

	// Types.
	KindTypeRef
	KindPrimitiveType
	KindVoidType
	KindWildcardType

	kindCount
)

var kindNames = [...]string{
	KindInvalid:            "invalid",
	KindCompilationUnit:    "compilation_unit",
	KindPackage:            "package",
	KindImport:             "import",
	KindClass:              "class",
	KindEnum:               "enum",
	KindEnumConstant:       "enum_constant",
	KindField:              "field",
	KindVariableDeclarator: "variable_declarator",
	KindMethod:             "method",
	KindConstructor:        "constructor",
	KindInitializer:        "initializer",
	KindParameter:          "parameter",
	KindEmptyMember:        "empty_member",
	KindBlock:              "block",
	KindLocalVar:           "local_var",
	KindLocalClass:         "local_class",
	KindExprStmt:           "expression_statement",
	KindIf:                 "if",
	KindWhile:              "while",
	KindDo:                 "do",
	KindFor:                "for",
	KindForEach:            "foreach",
	KindReturn:             "return",
	KindBreak:              "break",
	KindContinue:           "continue",
	KindThrow:              "throw",
	KindTry:                "try",
	KindCatch:              "catch",
	KindSwitch:             "switch",
	KindSwitchEntry:        "switch_entry",
	KindLabeled:            "labeled",
	KindEmpty:              "empty",
	KindSynchronized:       "synchronized",
	KindAssert:             "assert",
	KindExplicitCtorCall:   "explicit_constructor_call",
	KindName:               "name",
	KindFieldAccess:        "field_access",
	KindMethodCall:         "method_call",
	KindNew:                "new",
	KindAssign:             "assign",
	KindBinary:             "binary",
	KindUnary:              "unary",
	KindConditional:        "conditional",
	KindCast:               "cast",
	KindInstanceOf:         "instanceof",
	KindParen:              "paren",
	KindArrayAccess:        "array_access",
	KindArrayCreation:      "array_creation",
	KindArrayInit:          "array_init",
	KindLiteral:            "literal",
	KindThis:               "this",
	KindSuper:              "super",
	KindClassLiteral:       "class_literal",
	KindLambda:             "lambda",
	KindTypeRef:            "type_ref",
	KindPrimitiveType:      "primitive_type",
	KindVoidType:           "void_type",
	KindWildcardType:       "wildcard_type",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsStatement reports whether the kind may appear in a block's statement list.
func (k Kind) IsStatement() bool {
	return k >= KindBlock && k <= KindExplicitCtorCall
}

func (k Kind) IsExpression() bool {
	return k >= KindName && k <= KindLambda
}

type LiteralKind uint8

const (
	LitNone LiteralKind = iota
	LitInt
	LitFloat
	LitString
	LitChar
	LitBool
	LitNull
)

type Pos struct {
	Line   int
	Column int
}

// Before reports whether p starts earlier in the file than o.
func (p Pos) Before(o Pos) bool {
	return p.Line < o.Line || (p.Line == o.Line && p.Column < o.Column)
}

// Node is a single arena entry. Which slots are meaningful depends on Kind:
//
//	CompilationUnit  Members=package, imports and type declarations
//	Package/Import   Name=qualified name, Flag=on-demand import (.*), Static=static import
//	Class            Name, Mods, Annotations, Super=extends type, Interfaces, Members, Flag=interface
//	Enum             Name, Mods, Annotations, Entries=constants, Members=body declarations
//	EnumConstant     Name, Args, Members=constant class body
//	Field/LocalVar   Mods, Type, Vars=declarators
//	VariableDecl     Name, Dims, Value=initializer
//	Method           Name, Mods, Annotations, Type=return type, Params, Body=block (invalid when abstract)
//	Constructor      Name, Mods, Params, Body=block
//	Initializer      Mods (static), Body=block
//	Parameter        Name, Type, Flag=varargs
//	Block            Stmts
//	LocalClass       Value=class declaration
//	ExprStmt         Value=expression
//	If               Cond, Body=then, Else
//	While/Do         Cond, Body
//	For              Stmts=init, Cond, Entries=update, Body
//	ForEach          Value=iterable, Vars=[parameter], Body
//	Return/Throw     Value
//	Break/Continue   Name=label
//	Try              Body=try block, Entries=catches, Else=finally block
//	Catch            Params=[parameter], Body
//	Switch           Value=selector, Entries=switch entries
//	SwitchEntry      Args=labels (empty for default), Stmts
//	Labeled          Name, Body
//	Synchronized     Value=lock, Body
//	Assert           Value, Cond
//	ExplicitCtorCall Flag=this(...) rather than super(...), Args
//	Name             Name
//	FieldAccess      Receiver, Name
//	MethodCall       Receiver (may be invalid), Name, Args
//	New              Type, Args, Members=anonymous body, Flag=has anonymous body
//	Assign           Op, Left, Right
//	Binary           Op, Left, Right
//	Unary            Op, Value, Flag=postfix
//	Conditional      Cond, Left=then, Right=else
//	Cast             Type, Value
//	InstanceOf       Value, Type
//	Paren            Value
//	ArrayAccess      Left=array, Right=index
//	ArrayCreation    Type, Args=dimension expressions, Value=initializer
//	ArrayInit        Args=elements
//	Literal          Lit, Text=source text
//	This             Receiver=qualifying type (optional)
//	ClassLiteral     Type
//	Lambda           Params, Body=block or expression
//	TypeRef          Name (without type arguments), Dims
//	PrimitiveType    Name, Dims
type Node struct {
	ID          NodeID
	Kind        Kind
	Parent      NodeID
	Pos         Pos
	Name        string
	Op          string
	Text        string
	Lit         LiteralKind
	Mods        Modifiers
	Annotations []string
	Dims        int
	Flag        bool
	Static      bool

	Type     NodeID
	Receiver NodeID
	Left     NodeID
	Right    NodeID
	Cond     NodeID
	Body     NodeID
	Else     NodeID
	Value    NodeID
	Super    NodeID

	Interfaces []NodeID
	Params     []NodeID
	Args       []NodeID
	Members    []NodeID
	Stmts      []NodeID
	Vars       []NodeID
	Entries    []NodeID
}

// Comment is a source comment kept outside the node arena; the generator
// re-emits comments ahead of the member or statement that follows them.
type Comment struct {
	Pos  Pos
	Text string
}

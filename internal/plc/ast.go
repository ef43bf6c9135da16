// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package plc

// This file is the abstract syntax tree for structured text. The parser owns
// construction; everything reachable from a CompilationUnit is exclusively
// owned by it and never mutated after parsing returns.

// Node is one expression or statement of the tree.
type Node interface {
	node()
	GetID() int64
	GetSpan() Span
}

// NodeMeta carries the id and source span every node has. Embed it as the
// first field of a node struct.
type NodeMeta struct {
	ID   int64
	Span Span
}

func (m NodeMeta) node()         {}
func (m NodeMeta) GetID() int64  { return m.ID }
func (m NodeMeta) GetSpan() Span { return m.Span }

// Ident is a declared name together with where it was declared. It is not a
// Node; references inside expressions use ReferenceExpr instead.
type Ident struct {
	Name string
	Span Span
}

type LinkageType uint8

const (
	LinkageInternal LinkageType = iota
	LinkageExternal
	LinkageBuiltIn
)

func (l LinkageType) String() string {
	switch l {
	case LinkageExternal:
		return "External"
	case LinkageBuiltIn:
		return "BuiltIn"
	default:
		return "Internal"
	}
}

type PouKind uint8

const (
	PouProgram PouKind = iota
	PouFunction
	PouFunctionBlock
	PouClass
	PouMethod
	PouAction
)

func (k PouKind) String() string {
	switch k {
	case PouProgram:
		return "Program"
	case PouFunction:
		return "Function"
	case PouFunctionBlock:
		return "FunctionBlock"
	case PouClass:
		return "Class"
	case PouMethod:
		return "Method"
	default:
		return "Action"
	}
}

type DeclarationKind uint8

const (
	DeclarationConcrete DeclarationKind = iota
	DeclarationAbstract
)

// MethodDetail is set on Pous of kind PouMethod.
type MethodDetail struct {
	Parent      string
	Property    *Ident
	Declaration DeclarationKind
}

type PolymorphismMode uint8

const (
	PolymorphismNone PolymorphismMode = iota
	PolymorphismFinal
	PolymorphismAbstract
)

type AccessModifier uint8

const (
	AccessProtected AccessModifier = iota
	AccessPublic
	AccessPrivate
	AccessInternal
)

type TypeNature uint8

const (
	TypeNatureAny TypeNature = iota
	TypeNatureDerived
	TypeNatureElementary
	TypeNatureMagnitude
	TypeNatureNum
	TypeNatureReal
	TypeNatureInt
	TypeNatureSigned
	TypeNatureUnsigned
	TypeNatureDuration
	TypeNatureBit
	TypeNatureChars
	TypeNatureString
	TypeNatureChar
	TypeNatureDate
	TypeNatureVLA
)

// GenericBinding is one `name: nature` entry of a generic parameter list.
type GenericBinding struct {
	Name   string
	Nature TypeNature
}

// DintType is the backing integer type assigned to enums declared without one.
const DintType = "DINT"

// QualifiedName builds the dotted call name of a nested declaration.
func QualifiedName(container string, name string) string {
	return container + "." + name
}

// CompilationUnit is the root of a parsed file.
type CompilationUnit struct {
	FileName        string
	GlobalVars      []*VariableBlock
	VarConfig       []*ConfigVariable
	Pous            []*Pou
	Implementations []*Implementation
	Interfaces      []*Interface
	UserTypes       []*UserTypeDeclaration
}

func NewCompilationUnit(fileName string) *CompilationUnit {
	return &CompilationUnit{FileName: fileName}
}

// Pou is the declaration part of a program organization unit. Methods carry
// their qualified call name and a MethodDetail.
type Pou struct {
	Name           string
	ID             int64
	Kind           PouKind
	Method         *MethodDetail
	VariableBlocks []*VariableBlock
	ReturnType     DataTypeDeclaration
	Span           Span
	NameSpan       Span
	PolyMode       PolymorphismMode
	Generics       []GenericBinding
	Linkage        LinkageType
	SuperClass     *Ident
	Interfaces     []Ident
	Properties     []*PropertyBlock
	IsConst        bool
}

// Implementation is the executable body belonging to a Pou or action,
// matched to it by qualified name.
type Implementation struct {
	Name       string
	TypeName   string
	Linkage    LinkageType
	Kind       PouKind
	Statements []Node
	Span       Span
	NameSpan   Span
	EndSpan    Span
	Overriding bool
	Generic    bool
	Access     *AccessModifier
}

type Interface struct {
	ID         int64
	Ident      Ident
	Extensions []Ident
	Methods    []*Pou
	Properties []*PropertyBlock
	Span       Span
}

type PropertyKind uint8

const (
	PropertyGet PropertyKind = iota
	PropertySet
)

type PropertyBlock struct {
	Ident           Ident
	DataType        DataTypeDeclaration
	Implementations []*PropertyImplementation
}

type PropertyImplementation struct {
	Kind           PropertyKind
	VariableBlocks []*VariableBlock
	Body           []Node
	Span           Span
	EndSpan        Span
}

type VariableBlockKind uint8

const (
	VariableBlockLocal VariableBlockKind = iota
	VariableBlockTemp
	VariableBlockInput
	VariableBlockOutput
	VariableBlockGlobal
	VariableBlockInOut
	VariableBlockExternal
)

type ArgumentProperty uint8

const (
	ArgumentByVal ArgumentProperty = iota
	ArgumentByRef
)

type VariableBlock struct {
	Kind      VariableBlockKind
	Property  ArgumentProperty
	Constant  bool
	Retain    bool
	Access    AccessModifier
	Linkage   LinkageType
	Variables []*Variable
	Span      Span
}

type Variable struct {
	Name        string
	DataType    DataTypeDeclaration
	Initializer Node
	Address     Node
	Span        Span
}

// UserTypeDeclaration is one entry of a TYPE..END_TYPE block.
type UserTypeDeclaration struct {
	DataType    DataType
	Initializer Node
	Span        Span
	Scope       string
}

// ConfigVariable is one entry of a VAR_CONFIG block, binding a qualified
// reference to a hardware address.
type ConfigVariable struct {
	Reference Node
	DataType  DataTypeDeclaration
	Address   Node
	Span      Span
}

// DataTypeDeclaration is either a reference to a type declared elsewhere or
// an inline definition.
type DataTypeDeclaration interface {
	dataTypeDeclaration()
	GetSpan() Span
}

type DataTypeReference struct {
	ReferencedType string
	Span           Span
}

func (*DataTypeReference) dataTypeDeclaration() {}
func (d *DataTypeReference) GetSpan() Span      { return d.Span }

type DataTypeDefinition struct {
	DataType DataType
	Span     Span
	Scope    string
}

func (*DataTypeDefinition) dataTypeDeclaration() {}
func (d *DataTypeDefinition) GetSpan() Span      { return d.Span }

// DataType is the variant payload of an inline definition.
type DataType interface {
	dataType()
}

type StructType struct {
	Name      string
	Variables []*Variable
}

type ArrayType struct {
	Name           string
	Bounds         Node
	ElementType    DataTypeDeclaration
	VariableLength bool
}

type EnumType struct {
	Name        string
	NumericType string
	Elements    Node
}

type AutoDerefKind uint8

const (
	AutoDerefNone AutoDerefKind = iota
	AutoDerefReference
	AutoDerefAlias
)

type PointerType struct {
	Name           string
	ReferencedType DataTypeDeclaration
	AutoDeref      AutoDerefKind
	TypeSafe       bool
}

type StringType struct {
	Name string
	Wide bool
	Size Node
}

type SubRangeType struct {
	Name           string
	ReferencedType string
	Bounds         Node
}

type VarArgsType struct {
	ReferencedType DataTypeDeclaration
	Sized          bool
}

func (*StructType) dataType()   {}
func (*ArrayType) dataType()    {}
func (*EnumType) dataType()     {}
func (*PointerType) dataType()  {}
func (*StringType) dataType()   {}
func (*SubRangeType) dataType() {}
func (*VarArgsType) dataType()  {}

// ---- expression and statement nodes ----

type EmptyStatement struct{ NodeMeta }

// DefaultValue marks a constant variable without an explicit initializer; it
// stands for the declared type's default.
type DefaultValue struct{ NodeMeta }

type LiteralInteger struct {
	NodeMeta
	Value int64
}

type LiteralReal struct {
	NodeMeta
	Value string
}

type LiteralBool struct {
	NodeMeta
	Value bool
}

type LiteralString struct {
	NodeMeta
	Value string
	Wide  bool
}

// ReferenceExpr is a bare name used as an expression.
type ReferenceExpr struct {
	NodeMeta
	Name string
}

// MemberExpr is `Base.Name`.
type MemberExpr struct {
	NodeMeta
	Base Node
	Name string
}

// IndexExpr is `Base[Index]`.
type IndexExpr struct {
	NodeMeta
	Base  Node
	Index Node
}

// DerefExpr is `Base^`.
type DerefExpr struct {
	NodeMeta
	Base Node
}

// CallStatement is `Operator(Parameters)`; Parameters is nil for an empty
// argument list.
type CallStatement struct {
	NodeMeta
	Operator   Node
	Parameters Node
}

type ExpressionList struct {
	NodeMeta
	Expressions []Node
}

type Operator uint8

const (
	OperatorPlus Operator = iota
	OperatorMinus
	OperatorMultiplication
	OperatorExponentiation
	OperatorDivision
	OperatorEqual
	OperatorNotEqual
	OperatorLess
	OperatorGreater
	OperatorLessOrEqual
	OperatorGreaterOrEqual
	OperatorModulo
	OperatorAnd
	OperatorOr
	OperatorXor
	OperatorNot
)

type BinaryExpr struct {
	NodeMeta
	Operator Operator
	Left     Node
	Right    Node
}

type UnaryExpr struct {
	NodeMeta
	Operator Operator
	Operand  Node
}

type Assignment struct {
	NodeMeta
	Left  Node
	Right Node
}

type OutputAssignment struct {
	NodeMeta
	Left  Node
	Right Node
}

type RefAssignment struct {
	NodeMeta
	Left  Node
	Right Node
}

// RangeStatement is `Start..End`.
type RangeStatement struct {
	NodeMeta
	Start Node
	End   Node
}

// VlaRangeStatement is the `*` bound of a variable-length array.
type VlaRangeStatement struct{ NodeMeta }

// HardwareAccess is a direct address such as `%IX1.2`. Address holds the
// dot-separated integer segments; it is empty for the template form `%I*`.
type HardwareAccess struct {
	NodeMeta
	Direction HardwareAccessType
	Access    DirectAccessType
	Address   []Node
}

/// CaseCondition is a `label :` marker inside a CASE body.
type CaseCondition struct {
	NodeMeta
	Condition Node
}

// ConditionalBlock is one guarded branch of an IF or CASE statement.
type ConditionalBlock struct {
	Condition Node
	Body      []Node
}

type IfStatement struct {
	NodeMeta
	Blocks    []ConditionalBlock
	ElseBlock []Node
}

type CaseStatement struct {
	NodeMeta
	Selector  Node
	Cases     []ConditionalBlock
	ElseBlock []Node
}

type ForLoopStatement struct {
	NodeMeta
	Counter Node
	Start   Node
	End     Node
	By      Node
	Body    []Node
}

type WhileLoopStatement struct {
	NodeMeta
	Condition Node
	Body      []Node
}

type RepeatLoopStatement struct {
	NodeMeta
	Condition Node
	Body      []Node
}

type ExitStatement struct{ NodeMeta }

type ContinueStatement struct{ NodeMeta }

type ReturnStatement struct{ NodeMeta }

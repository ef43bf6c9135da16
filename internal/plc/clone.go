// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package plc

// Deep copies for the variable-line expansion: names declared on one line
// share their type and initializer structurally, but each Variable owns an
// independent copy so mutating one cannot affect its siblings. Ids are
// preserved; clones are structural copies, not new declarations.

func CloneNode(n Node) Node {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *EmptyStatement:
		c := *v
		return &c
	case *DefaultValue:
		c := *v
		return &c
	case *LiteralInteger:
		c := *v
		return &c
	case *LiteralReal:
		c := *v
		return &c
	case *LiteralBool:
		c := *v
		return &c
	case *LiteralString:
		c := *v
		return &c
	case *ReferenceExpr:
		c := *v
		return &c
	case *MemberExpr:
		c := *v
		c.Base = CloneNode(v.Base)
		return &c
	case *IndexExpr:
		c := *v
		c.Base = CloneNode(v.Base)
		c.Index = CloneNode(v.Index)
		return &c
	case *DerefExpr:
		c := *v
		c.Base = CloneNode(v.Base)
		return &c
	case *CallStatement:
		c := *v
		c.Operator = CloneNode(v.Operator)
		c.Parameters = CloneNode(v.Parameters)
		return &c
	case *ExpressionList:
		c := *v
		c.Expressions = cloneNodes(v.Expressions)
		return &c
	case *BinaryExpr:
		c := *v
		c.Left = CloneNode(v.Left)
		c.Right = CloneNode(v.Right)
		return &c
	case *UnaryExpr:
		c := *v
		c.Operand = CloneNode(v.Operand)
		return &c
	case *Assignment:
		c := *v
		c.Left = CloneNode(v.Left)
		c.Right = CloneNode(v.Right)
		return &c
	case *OutputAssignment:
		c := *v
		c.Left = CloneNode(v.Left)
		c.Right = CloneNode(v.Right)
		return &c
	case *RefAssignment:
		c := *v
		c.Left = CloneNode(v.Left)
		c.Right = CloneNode(v.Right)
		return &c
	case *RangeStatement:
		c := *v
		c.Start = CloneNode(v.Start)
		c.End = CloneNode(v.End)
		return &c
	case *VlaRangeStatement:
		c := *v
		return &c
	case *HardwareAccess:
		c := *v
		c.Address = cloneNodes(v.Address)
		return &c
	case *CaseCondition:
		c := *v
		c.Condition = CloneNode(v.Condition)
		return &c
	case *IfStatement:
		c := *v
		c.Blocks = cloneConditionalBlocks(v.Blocks)
		c.ElseBlock = cloneNodes(v.ElseBlock)
		return &c
	case *CaseStatement:
		c := *v
		c.Selector = CloneNode(v.Selector)
		c.Cases = cloneConditionalBlocks(v.Cases)
		c.ElseBlock = cloneNodes(v.ElseBlock)
		return &c
	case *ForLoopStatement:
		c := *v
		c.Counter = CloneNode(v.Counter)
		c.Start = CloneNode(v.Start)
		c.End = CloneNode(v.End)
		c.By = CloneNode(v.By)
		c.Body = cloneNodes(v.Body)
		return &c
	case *WhileLoopStatement:
		c := *v
		c.Condition = CloneNode(v.Condition)
		c.Body = cloneNodes(v.Body)
		return &c
	case *RepeatLoopStatement:
		c := *v
		c.Condition = CloneNode(v.Condition)
		c.Body = cloneNodes(v.Body)
		return &c
	case *ExitStatement:
		c := *v
		return &c
	case *ContinueStatement:
		c := *v
		return &c
	case *ReturnStatement:
		c := *v
		return &c
	default:
		return n
	}
}

func cloneNodes(ns []Node) []Node {
	if ns == nil {
		return nil
	}
	out := make([]Node, len(ns))
	for i, n := range ns {
		out[i] = CloneNode(n)
	}
	return out
}

func cloneConditionalBlocks(bs []ConditionalBlock) []ConditionalBlock {
	if bs == nil {
		return nil
	}
	out := make([]ConditionalBlock, len(bs))
	for i, b := range bs {
		out[i] = ConditionalBlock{Condition: CloneNode(b.Condition), Body: cloneNodes(b.Body)}
	}
	return out
}

func CloneDataTypeDeclaration(d DataTypeDeclaration) DataTypeDeclaration {
	if d == nil {
		return nil
	}
	switch v := d.(type) {
	case *DataTypeReference:
		c := *v
		return &c
	case *DataTypeDefinition:
		c := *v
		c.DataType = cloneDataType(v.DataType)
		return &c
	default:
		return d
	}
}

func cloneDataType(d DataType) DataType {
	if d == nil {
		return nil
	}
	switch v := d.(type) {
	case *StructType:
		c := *v
		c.Variables = CloneVariables(v.Variables)
		return &c
	case *ArrayType:
		c := *v
		c.Bounds = CloneNode(v.Bounds)
		c.ElementType = CloneDataTypeDeclaration(v.ElementType)
		return &c
	case *EnumType:
		c := *v
		c.Elements = CloneNode(v.Elements)
		return &c
	case *PointerType:
		c := *v
		c.ReferencedType = CloneDataTypeDeclaration(v.ReferencedType)
		return &c
	case *StringType:
		c := *v
		c.Size = CloneNode(v.Size)
		return &c
	case *SubRangeType:
		c := *v
		c.Bounds = CloneNode(v.Bounds)
		return &c
	case *VarArgsType:
		c := *v
		c.ReferencedType = CloneDataTypeDeclaration(v.ReferencedType)
		return &c
	default:
		return d
	}
}

func CloneVariables(vs []*Variable) []*Variable {
	if vs == nil {
		return nil
	}
	out := make([]*Variable, len(vs))
	for i, v := range vs {
		c := *v
		c.DataType = CloneDataTypeDeclaration(v.DataType)
		c.Initializer = CloneNode(v.Initializer)
		c.Address = CloneNode(v.Address)
		out[i] = &c
	}
	return out
}

// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package plc

// WalkUnit visits every node reachable from the compilation unit, children
// before parents.
func WalkUnit(unit *CompilationUnit, f func(Node)) {
	for _, block := range unit.GlobalVars {
		walkVariableBlock(block, f)
	}
	for _, variable := range unit.VarConfig {
		WalkNode(variable.Reference, f)
		WalkNode(variable.Address, f)
	}
	for _, pou := range unit.Pous {
		walkPou(pou, f)
	}
	for _, impl := range unit.Implementations {
		walkNodes(impl.Statements, f)
	}
	for _, iface := range unit.Interfaces {
		for _, method := range iface.Methods {
			walkPou(method, f)
		}
		for _, property := range iface.Properties {
			walkPropertyBlock(property, f)
		}
	}
	for _, userType := range unit.UserTypes {
		walkDataType(userType.DataType, f)
		WalkNode(userType.Initializer, f)
	}
}

func walkPou(pou *Pou, f func(Node)) {
	for _, block := range pou.VariableBlocks {
		walkVariableBlock(block, f)
	}
	for _, property := range pou.Properties {
		walkPropertyBlock(property, f)
	}
	walkDataTypeDeclaration(pou.ReturnType, f)
}

func walkPropertyBlock(property *PropertyBlock, f func(Node)) {
	walkDataTypeDeclaration(property.DataType, f)
	for _, impl := range property.Implementations {
		for _, block := range impl.VariableBlocks {
			walkVariableBlock(block, f)
		}
		walkNodes(impl.Body, f)
	}
}

func walkVariableBlock(block *VariableBlock, f func(Node)) {
	for _, variable := range block.Variables {
		walkDataTypeDeclaration(variable.DataType, f)
		WalkNode(variable.Initializer, f)
		WalkNode(variable.Address, f)
	}
}

func walkDataTypeDeclaration(declaration DataTypeDeclaration, f func(Node)) {
	definition, ok := declaration.(*DataTypeDefinition)
	if !ok {
		return
	}
	walkDataType(definition.DataType, f)
}

func walkDataType(dataType DataType, f func(Node)) {
	switch t := dataType.(type) {
	case *StructType:
		for _, variable := range t.Variables {
			walkDataTypeDeclaration(variable.DataType, f)
			WalkNode(variable.Initializer, f)
			WalkNode(variable.Address, f)
		}
	case *ArrayType:
		WalkNode(t.Bounds, f)
		walkDataTypeDeclaration(t.ElementType, f)
	case *EnumType:
		WalkNode(t.Elements, f)
	case *PointerType:
		walkDataTypeDeclaration(t.ReferencedType, f)
	case *StringType:
		WalkNode(t.Size, f)
	case *SubRangeType:
		WalkNode(t.Bounds, f)
	case *VarArgsType:
		walkDataTypeDeclaration(t.ReferencedType, f)
	}
}

func walkNodes(ns []Node, f func(Node)) {
	for _, n := range ns {
		WalkNode(n, f)
	}
}

func walkConditionalBlocks(bs []ConditionalBlock, f func(Node)) {
	for _, b := range bs {
		WalkNode(b.Condition, f)
		walkNodes(b.Body, f)
	}
}

// WalkNode visits n and everything below it, children first. A nil node is a
// no-op so optional children can be walked unconditionally.
func WalkNode(n Node, f func(Node)) {
	if n == nil {
		return
	}
	switch t := n.(type) {
	case *MemberExpr:
		WalkNode(t.Base, f)
	case *IndexExpr:
		WalkNode(t.Base, f)
		WalkNode(t.Index, f)
	case *DerefExpr:
		WalkNode(t.Base, f)
	case *CallStatement:
		WalkNode(t.Operator, f)
		WalkNode(t.Parameters, f)
	case *ExpressionList:
		walkNodes(t.Expressions, f)
	case *BinaryExpr:
		WalkNode(t.Left, f)
		WalkNode(t.Right, f)
	case *UnaryExpr:
		WalkNode(t.Operand, f)
	case *Assignment:
		WalkNode(t.Left, f)
		WalkNode(t.Right, f)
	case *OutputAssignment:
		WalkNode(t.Left, f)
		WalkNode(t.Right, f)
	case *RefAssignment:
		WalkNode(t.Left, f)
		WalkNode(t.Right, f)
	case *RangeStatement:
		WalkNode(t.Start, f)
		WalkNode(t.End, f)
	case *HardwareAccess:
		walkNodes(t.Address, f)
	case *CaseCondition:
		WalkNode(t.Condition, f)
	case *IfStatement:
		walkConditionalBlocks(t.Blocks, f)
		walkNodes(t.ElseBlock, f)
	case *CaseStatement:
		WalkNode(t.Selector, f)
		walkConditionalBlocks(t.Cases, f)
		walkNodes(t.ElseBlock, f)
	case *ForLoopStatement:
		WalkNode(t.Counter, f)
		WalkNode(t.Start, f)
		WalkNode(t.End, f)
		WalkNode(t.By, f)
		walkNodes(t.Body, f)
	case *WhileLoopStatement:
		WalkNode(t.Condition, f)
		walkNodes(t.Body, f)
	case *RepeatLoopStatement:
		WalkNode(t.Condition, f)
		walkNodes(t.Body, f)
	}
	f(n)
}

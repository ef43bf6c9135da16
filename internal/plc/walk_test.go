// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package plc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalkNode(t *testing.T) {
	t.Parallel()

	// x := arr[i] + 1
	tree := &Assignment{
		Left: &ReferenceExpr{Name: "x"},
		Right: &BinaryExpr{
			Operator: OperatorPlus,
			Left: &IndexExpr{
				Base:  &ReferenceExpr{Name: "arr"},
				Index: &ReferenceExpr{Name: "i"},
			},
			Right: &LiteralInteger{Value: 1},
		},
	}

	var visited []Node
	WalkNode(tree, func(n Node) {
		visited = append(visited, n)
	})
	require.Len(t, visited, 7)
	// children come before parents, the root is last
	require.Same(t, tree, visited[len(visited)-1])

	var names []string
	WalkNode(tree, func(n Node) {
		if ref, ok := n.(*ReferenceExpr); ok {
			names = append(names, ref.Name)
		}
	})
	require.Equal(t, []string{"x", "arr", "i"}, names)
}

func TestWalkNodeNil(t *testing.T) {
	t.Parallel()

	count := 0
	WalkNode(nil, func(Node) { count = count + 1 })
	require.Equal(t, 0, count)
}

func TestWalkUnit(t *testing.T) {
	t.Parallel()

	unit := NewCompilationUnit("/test.st")
	unit.Pous = append(unit.Pous, &Pou{
		Name: "p",
		Kind: PouProgram,
		VariableBlocks: []*VariableBlock{{
			Kind: VariableBlockLocal,
			Variables: []*Variable{{
				Name:        "x",
				DataType:    &DataTypeReference{ReferencedType: "INT"},
				Initializer: &LiteralInteger{Value: 1},
			}},
		}},
	})
	unit.Implementations = append(unit.Implementations, &Implementation{
		Name: "p",
		Kind: PouProgram,
		Statements: []Node{
			&Assignment{
				Left:  &ReferenceExpr{Name: "x"},
				Right: &LiteralInteger{Value: 2},
			},
		},
	})

	initializers := 0
	assignments := 0
	WalkUnit(unit, func(n Node) {
		switch n.(type) {
		case *LiteralInteger:
			initializers = initializers + 1
		case *Assignment:
			assignments = assignments + 1
		}
	})
	require.Equal(t, 2, initializers)
	require.Equal(t, 1, assignments)
}

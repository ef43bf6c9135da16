// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	it := NewSlice([]int{1, 2, 3})
	for _, expected := range []int{1, 2, 3} {
		v := it.Next(ctx)
		require.True(t, v.IsPresent())
		require.Equal(t, expected, v.Value())
	}
	require.False(t, it.Next(ctx).IsPresent())
	require.False(t, it.Next(ctx).IsPresent())
	require.Nil(t, it.Close(ctx))
}

func TestFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	it := NewFilter(NewSlice([]int{1, 2, 3, 4, 5}), FilterFunc[int](func(ctx context.Context, v int) bool {
		return v%2 == 1
	}))
	var got []int
	for v := it.Next(ctx); v.IsPresent(); v = it.Next(ctx) {
		got = append(got, v.Value())
	}
	require.Equal(t, []int{1, 3, 5}, got)
}

func TestLookahead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	look := NewLookahead(NewSlice([]int{10, 20, 30, 40}), 2)

	// index 0 is the value Next just returned, index 1 the next unconsumed one
	require.Equal(t, 10, look.Next(ctx).Value())
	require.Equal(t, 10, look.Lookahead(ctx, 0).Value())
	require.Equal(t, 20, look.Lookahead(ctx, 1).Value())
	require.Equal(t, 30, look.Lookahead(ctx, 2).Value())

	require.Equal(t, 20, look.Next(ctx).Value())
	require.Equal(t, 40, look.Lookahead(ctx, 2).Value())

	// beyond the window and past the end of input
	require.False(t, look.Lookahead(ctx, 3).IsPresent())
	require.Equal(t, 30, look.Next(ctx).Value())
	require.Equal(t, 40, look.Next(ctx).Value())
	require.False(t, look.Next(ctx).IsPresent())
	require.False(t, look.Lookahead(ctx, 1).IsPresent())
}

func TestUnicodeString(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	it := NewUnicodeString("aä€")
	var got []rune
	for v := it.Next(ctx); v.IsPresent(); v = it.Next(ctx) {
		got = append(got, rune(v.Value()))
	}
	require.Equal(t, []rune{'a', 'ä', '€'}, got)
}

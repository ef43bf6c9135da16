// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"context"

	"gopkg.ieclang.org/compiler.go/internal/optional"
	"gopkg.ieclang.org/compiler.go/internal/plc"
)

// NewUnicodeString exposes a source string as an iterator of code points for
// the lexer. Source text is supplied by the caller as a whole; there is no
// file streaming in this core.
func NewUnicodeString(source string) plc.Iterator[plc.CodePoint] {
	return &iteratorUnicodeString{runes: []rune(source), offset: -1}
}

type iteratorUnicodeString struct {
	runes  []rune
	offset int
}

func (it *iteratorUnicodeString) Next(ctx context.Context) optional.Optional[plc.CodePoint] {
	it.offset = it.offset + 1
	if it.offset >= len(it.runes) {
		return optional.None[plc.CodePoint]()
	}
	return optional.Some(plc.CodePoint(it.runes[it.offset]))
}

func (it *iteratorUnicodeString) Close(ctx context.Context) error {
	return nil
}

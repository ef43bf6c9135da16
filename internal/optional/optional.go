// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package optional

// Optional is a value that may be absent, used for iterator results where a
// nil sentinel would not work for value types.
type Optional[T any] struct {
	present bool
	value   T
}

func (self Optional[T]) IsPresent() bool {
	return self.present
}

func (self Optional[T]) Value() T {
	return self.value
}

// OrElse returns the contained value or the given fallback.
func (self Optional[T]) OrElse(fallback T) T {
	if self.present {
		return self.value
	}
	return fallback
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{
		present: true,
		value:   v,
	}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// SPDX-License-Identifier: GPL-3.0-or-later
package settings

import (
	"fmt"
	"reflect"
)

// mergeable is implemented by the settings types. Field values are exchanged
// by index so the merge can stay generic without reflecting over struct tags.
type mergeable interface {
	fieldNames() []string
	explicit(i int) bool
	value(i int) any
	// assign sets the field and marks it explicit
	assign(i int, v any)
	mark(i int)
	clone() mergeable
}

// Merge combines settings instances left to right. A field explicitly set on a
// later instance overrides the accumulated value, defaulted fields never do.
// Nested settings are merged recursively. Nil instances are skipped and the
// result is nil when every instance is nil. The result is a fresh value whose
// explicit fields are the union of the explicit fields of the inputs, which
// makes Merge(a, b, c) equal Merge(Merge(a, b), c).
func Merge[T any, PT interface {
	*T
	mergeable
}](instances ...PT) PT {
	var result PT
	for _, instance := range instances {
		if instance == nil {
			continue
		}
		if result == nil {
			result = instance.clone().(PT)
			continue
		}
		mergeInto(result, instance)
	}

	return result
}

func mergeInto(acc, next mergeable) {
	if reflect.TypeOf(acc) != reflect.TypeOf(next) {
		panic(fmt.Sprintf("settings: cannot merge %T into %T", next, acc))
	}

	for i := range acc.fieldNames() {
		if !next.explicit(i) {
			continue
		}

		nextValue := next.value(i)
		current, nested := acc.value(i).(mergeable)
		switch {
		case nested && nextValue == nil:
			// an explicit null never clears accumulated nested settings
			acc.mark(i)
		case nested:
			nextNested, ok := nextValue.(mergeable)
			if !ok {
				panic(fmt.Sprintf("settings: field %s holds %T, expected %T", acc.fieldNames()[i], nextValue, current))
			}
			mergeInto(current, nextNested)
			acc.mark(i)
		default:
			acc.assign(i, nextValue)
		}
	}
}

//go:build reflectdebug

package reflection

import "fmt"

func checkBounds(owner, field string, ownerSize, offset, size uintptr) {
	if offset+size > ownerSize {
		panic(fmt.Errorf("%s.%s [%d, %d) of %d: %w", owner, field, offset, offset+size, ownerSize, ErrInvariantViolation))
	}
}

//go:build !reflectdebug

package reflection

func checkBounds(_, _ string, _, _, _ uintptr) {}

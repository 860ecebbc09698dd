//go:build !unix

package scanner

// Without lstat block counts the du utility is the only source of allocated size.
func newBlockProbe() SizeProbe {
	return DuProbe{}
}

// Package scanner finds functions marked for binding in a Python package or
// a Go module and resolves their signatures.
//
// A scan never stops at the first bad function: every declaration that
// carries a marker either becomes a Binding or a ResolutionError. Only a tree
// that cannot be read or parsed at all yields a StructuralError.
package scanner

// Package resolver maps source-side type annotations onto boundary type
// descriptors, and renders descriptors back into Go and Python declaration
// syntax.
//
// Scalars keep their exact width: an 8-bit and a 64-bit integer never
// resolve to the same descriptor. Recognized containers resolve their
// parameters recursively and fail as a whole when any parameter fails.
// Unrecognized names resolve to ir.Opaque. Type variables with an explicit
// list of scalar alternatives resolve to ir.Choice.
package resolver

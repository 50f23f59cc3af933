// Package generate runs one binding generation end to end.
//
// A py2go run scans a Python package, builds its namespace model and writes
// the Go glue file at the package root. A go2py run scans a Go module and
// returns the live namespace graph together with its Python stub. Every run
// produces a Report; runs are optionally recorded in a Journal.
//
// Per-function resolution failures are collected and reported. A run fails
// when nothing could be bound, or on a structural or collision error. A
// failed run never writes output.
package generate

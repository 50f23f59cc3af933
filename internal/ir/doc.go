// Package ir holds the language-neutral description of a binding: boundary
// type descriptors, binding signatures, and the canonical encoding used to
// fingerprint them.
//
// ir imports nothing internal. Scanners produce ir values, the package model
// stores them and the emitters consume them.
package ir

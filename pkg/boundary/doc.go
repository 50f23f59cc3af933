// Package boundary defines the value types that cross the Python/Go boundary.
//
// Scalars (I8 … U64, F32, F64) are plain Go values with copy semantics.
// Strings, booleans, tuples, lists and maps are owned handles: the side that
// allocates a handle releases it exactly once, unless ownership is handed over
// with IntoRaw and adopted on the other side with FromRaw. Borrowed views
// (StrView, elements returned by At or a Cursor) are never released.
//
// Misusing a handle (nil handle, use after release, double release) is a
// caller bug and panics with a *ContractViolation. Ordinary conversion
// failures are returned as errors (*TypeMismatchError, *IndexError, or one of
// the sentinel errors).
//
// Generated glue depends on the runtime contracts in runtime.go and on the
// encoder/decoder helpers in codec.go.
package boundary

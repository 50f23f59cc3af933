package boundary

// Kind identifies the concrete type of a boundary value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindBool
	KindString
	KindTuple
	KindList
	KindMap
	KindOpaque
	KindUnit
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindI8:      "i8",
	KindI16:     "i16",
	KindI32:     "i32",
	KindI64:     "i64",
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindF32:     "f32",
	KindF64:     "f64",
	KindBool:    "bool",
	KindString:  "str",
	KindTuple:   "tuple",
	KindList:    "list",
	KindMap:     "map",
	KindOpaque:  "opaque",
	KindUnit:    "unit",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool { return k >= KindI8 && k <= KindI64 }

// IsUnsigned reports whether k is an unsigned integer kind.
func (k Kind) IsUnsigned() bool { return k >= KindU8 && k <= KindU64 }

// IsFloat reports whether k is a floating-point kind.
func (k Kind) IsFloat() bool { return k == KindF32 || k == KindF64 }

// IsHashable reports whether values of kind k may be used as map keys:
// numeric scalars, booleans and strings.
func (k Kind) IsHashable() bool { return k >= KindI8 && k <= KindString }

// IsOwned reports whether values of kind k are handles that must be released.
func (k Kind) IsOwned() bool { return k >= KindBool && k <= KindMap }

package dict

import "github.com/vmihailenco/msgpack/v5/msgpcode"

// leafKind tags the leaf type inferred for an incoming wire payload
// whose key does not exist yet.  Keys that already exist never go
// through inference; their cell's bound type decides.
type leafKind int

const (
	leafInvalid leafKind = iota
	leafBool
	leafInt
	leafUint
	leafFloat32
	leafFloat64
	leafString
	leafVector2
	leafVector3
	leafQuaternion
	leafMatrix3
	leafVectorX
	leafVectorList
)

// scalarLeafKind maps a scalar wire tag to the leaf type bound for a
// new key.  Bin and nil payloads have no inferable target type and
// come back invalid; so do map and array tags, which are shaped, not
// scalar.
func scalarLeafKind(code byte) leafKind {
	switch {
	case isBoolCode(code):
		return leafBool
	case isIntCode(code):
		return leafInt
	case isUintCode(code):
		return leafUint
	case code == msgpcode.Float:
		return leafFloat32
	case code == msgpcode.Double:
		return leafFloat64
	case isStringCode(code):
		return leafString
	default:
		return leafInvalid
	}
}

// arrayLeafKind maps a flat numeric array's length to the leaf type
// bound for a new key.  Lengths 2, 3, 4 and 9 double as the geometric
// types; everything else is a variable-length vector.  Empty arrays
// have no inferable element type.
func arrayLeafKind(n int) leafKind {
	switch n {
	case 0:
		return leafInvalid
	case 2:
		return leafVector2
	case 3:
		return leafVector3
	case 4:
		return leafQuaternion
	case 9:
		return leafMatrix3
	default:
		return leafVectorX
	}
}

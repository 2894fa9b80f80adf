// Package tensor provides the array substrate for the Grove parameter-management library.
//
// Tensors here are deliberately small: float32 data, a shape, and exactly the
// operations the layers and optimizers consume. Grove is a parameter-management
// library, not a tensor library; anything resembling a general broadcasting
// engine, dtype promotion, or device abstraction is out of scope.
package tensor

import "fmt"

// DataType identifies the element type of serialized tensor data.
//
// Grove computes in float32 only, but the checkpoint format records a dtype
// per tensor so files stay self-describing and forward-compatible.
type DataType int

// Supported data types for checkpoint metadata.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseDataType converts a dtype string (as written by the checkpoint format)
// back to a DataType.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "float32":
		return Float32, nil
	case "float64":
		return Float64, nil
	case "int32":
		return Int32, nil
	case "int64":
		return Int64, nil
	case "uint8":
		return Uint8, nil
	case "bool":
		return Bool, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q", s)
	}
}

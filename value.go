package dict

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// cell is the type-erased holder of one leaf value.  It stores a
// pointer to a concrete Go value together with the three operations
// bound to that value's type at creation time.  The bound type never
// changes for the cell's lifetime; typed access goes through cellRef,
// which checks the type token.
type cell struct {
	typ reflect.Type
	ptr interface{}
	ops leafOps
}

// leafOps is the per-type dispatch table, captured once when a cell is
// bound.  There is no global registry keyed by type identity; each
// closure holds the typed pointer it operates on.
type leafOps struct {
	encode func(*msgpack.Encoder) error
	decode func(*msgpack.Decoder) error
	render func(*strings.Builder)
}

// newCell binds a fresh cell to the given value.  Returns a TypeError
// for types outside the leaf catalog.
func newCell[T any](v T) (*cell, error) {
	p := new(T)
	*p = v
	ops, err := leafOpsFor(interface{}(p))
	if err != nil {
		return nil, err
	}
	return &cell{typ: reflect.TypeOf(v), ptr: p, ops: ops}, nil
}

// cellRef returns the typed pointer held by c, or a TypeError if c is
// bound to a different type than T.
func cellRef[T any](c *cell) (*T, error) {
	p, ok := c.ptr.(*T)
	if !ok {
		var want T
		return nil, typeErrorf("value has type %q but is being cast to type %q",
			c.typ, reflect.TypeOf(want))
	}
	return p, nil
}

// clone copies the cell through the codec while preserving its bound
// type: the value is encoded, then decoded into a new cell of the
// same type.  The result shares no storage with c.
func (c *cell) clone() (*cell, error) {
	data, err := c.encodeBytes()
	if err != nil {
		return nil, err
	}
	np := reflect.New(c.typ).Interface()
	ops, err := leafOpsFor(np)
	if err != nil {
		return nil, err
	}
	nc := &cell{typ: c.typ, ptr: np, ops: ops}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := nc.ops.decode(dec); err != nil {
		return nil, err
	}
	return nc, nil
}

// encodeBytes returns the cell's wire encoding on its own.
func (c *cell) encodeBytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := c.ops.encode(enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// leafOpsFor builds the dispatch table for a typed pointer.  The type
// switch is the whole leaf catalog; anything else is rejected with a
// TypeError so the unsupported type is caught at bind time, not at
// first serialization.
func leafOpsFor(ptr interface{}) (leafOps, error) {
	switch p := ptr.(type) {
	case *bool:
		return leafOps{
			encode: func(e *msgpack.Encoder) error { return e.EncodeBool(*p) },
			decode: func(d *msgpack.Decoder) error {
				code, err := peekCode(d)
				if err != nil {
					return err
				}
				if !isBoolCode(code) {
					return typeErrorf("expecting bool, got wire tag 0x%02x", code)
				}
				v, err := d.DecodeBool()
				if err != nil {
					return wireErr("bool", err)
				}
				*p = v
				return nil
			},
			render: func(b *strings.Builder) { renderBool(b, *p) },
		}, nil
	case *int:
		return signedOps(p, math.MinInt, math.MaxInt, "int"), nil
	case *int8:
		return signedOps(p, math.MinInt8, math.MaxInt8, "int8"), nil
	case *int16:
		return signedOps(p, math.MinInt16, math.MaxInt16, "int16"), nil
	case *int32:
		return signedOps(p, math.MinInt32, math.MaxInt32, "int32"), nil
	case *int64:
		return signedOps(p, math.MinInt64, math.MaxInt64, "int64"), nil
	case *uint:
		return unsignedOps(p, math.MaxUint, "uint"), nil
	case *uint8:
		return unsignedOps(p, math.MaxUint8, "uint8"), nil
	case *uint16:
		return unsignedOps(p, math.MaxUint16, "uint16"), nil
	case *uint32:
		return unsignedOps(p, math.MaxUint32, "uint32"), nil
	case *uint64:
		return unsignedOps(p, math.MaxUint64, "uint64"), nil
	case *float32:
		return leafOps{
			encode: func(e *msgpack.Encoder) error { return e.EncodeFloat32(*p) },
			decode: func(d *msgpack.Decoder) error {
				v, err := readFloat(d)
				if err != nil {
					return err
				}
				*p = float32(v)
				return nil
			},
			render: func(b *strings.Builder) { renderFloat(b, float64(*p)) },
		}, nil
	case *float64:
		return leafOps{
			encode: func(e *msgpack.Encoder) error { return e.EncodeFloat64(*p) },
			decode: func(d *msgpack.Decoder) error {
				v, err := readFloat(d)
				if err != nil {
					return err
				}
				*p = v
				return nil
			},
			render: func(b *strings.Builder) { renderFloat(b, *p) },
		}, nil
	case *string:
		return leafOps{
			encode: func(e *msgpack.Encoder) error { return e.EncodeString(*p) },
			decode: func(d *msgpack.Decoder) error {
				code, err := peekCode(d)
				if err != nil {
					return err
				}
				if !isStringCode(code) {
					return typeErrorf("expecting string, got wire tag 0x%02x", code)
				}
				v, err := d.DecodeString()
				if err != nil {
					return wireErr("string", err)
				}
				*p = v
				return nil
			},
			render: func(b *strings.Builder) { renderString(b, *p) },
		}, nil
	case *Vector2:
		return fixedVectorOps(p[:], "Vector2"), nil
	case *Vector3:
		return fixedVectorOps(p[:], "Vector3"), nil
	case *Quaternion:
		return fixedVectorOps(p[:], "Quaternion"), nil
	case *Matrix3:
		return fixedVectorOps(p[:], "Matrix3"), nil
	case *[]float64:
		return leafOps{
			encode: func(e *msgpack.Encoder) error { return encodeFloats(e, *p) },
			decode: func(d *msgpack.Decoder) error {
				v, err := readFloatArray(d)
				if err != nil {
					return err
				}
				*p = v
				return nil
			},
			render: func(b *strings.Builder) { renderFloats(b, *p) },
		}, nil
	case *[][]float64:
		return leafOps{
			encode: func(e *msgpack.Encoder) error {
				if err := e.EncodeArrayLen(len(*p)); err != nil {
					return err
				}
				for _, row := range *p {
					if err := encodeFloats(e, row); err != nil {
						return err
					}
				}
				return nil
			},
			decode: func(d *msgpack.Decoder) error {
				v, err := readFloatArrayList(d)
				if err != nil {
					return err
				}
				*p = v
				return nil
			},
			render: func(b *strings.Builder) {
				b.WriteByte('[')
				for i, row := range *p {
					if i > 0 {
						b.WriteString(", ")
					}
					renderFloats(b, row)
				}
				b.WriteByte(']')
			},
		}, nil
	default:
		return leafOps{}, typeErrorf("type %T is not a supported leaf type", ptr)
	}
}

// signedOps covers the signed integer leaves.  Wire integers may come
// back with either int or uint tags; values out of T's range fail.
func signedOps[T ~int | ~int8 | ~int16 | ~int32 | ~int64](p *T, min, max int64, name string) leafOps {
	return leafOps{
		encode: func(e *msgpack.Encoder) error { return e.EncodeInt(int64(*p)) },
		decode: func(d *msgpack.Decoder) error {
			code, err := peekCode(d)
			if err != nil {
				return err
			}
			if !isIntCode(code) && !isUintCode(code) {
				return typeErrorf("expecting %s, got wire tag 0x%02x", name, code)
			}
			v, err := d.DecodeInt64()
			if err != nil {
				return wireErr(name, err)
			}
			if v < min || v > max {
				return typeErrorf("value %d overflows %s", v, name)
			}
			*p = T(v)
			return nil
		},
		render: func(b *strings.Builder) { renderInt(b, int64(*p)) },
	}
}

// unsignedOps covers the unsigned integer leaves.
func unsignedOps[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](p *T, max uint64, name string) leafOps {
	return leafOps{
		encode: func(e *msgpack.Encoder) error { return e.EncodeUint(uint64(*p)) },
		decode: func(d *msgpack.Decoder) error {
			code, err := peekCode(d)
			if err != nil {
				return err
			}
			if !isIntCode(code) && !isUintCode(code) {
				return typeErrorf("expecting %s, got wire tag 0x%02x", name, code)
			}
			v, err := d.DecodeUint64()
			if err != nil {
				return wireErr(name, err)
			}
			if v > max {
				return typeErrorf("value %d overflows %s", v, name)
			}
			*p = T(v)
			return nil
		},
		render: func(b *strings.Builder) { renderUint(b, uint64(*p)) },
	}
}

// fixedVectorOps covers the geometric leaves, which all encode as
// fixed-length numeric arrays over the same backing slice view.
func fixedVectorOps(view []float64, name string) leafOps {
	return leafOps{
		encode: func(e *msgpack.Encoder) error { return encodeFloats(e, view) },
		decode: func(d *msgpack.Decoder) error {
			code, err := peekCode(d)
			if err != nil {
				return err
			}
			if !isArrayCode(code) {
				return typeErrorf("expecting %s, got wire tag 0x%02x", name, code)
			}
			n, err := d.DecodeArrayLen()
			if err != nil {
				return wireErr(name, err)
			}
			if n != len(view) {
				return typeErrorf("expecting %d-element array for %s, got %d elements",
					len(view), name, n)
			}
			// Decode to a scratch slice so a mid-array failure
			// leaves the bound value untouched.
			tmp := make([]float64, n)
			for i := 0; i < n; i++ {
				v, err := readFloat(d)
				if err != nil {
					return fmt.Errorf("%s element %d: %w", name, i, err)
				}
				tmp[i] = v
			}
			copy(view, tmp)
			return nil
		},
		render: func(b *strings.Builder) { renderFloats(b, view) },
	}
}

func encodeFloats(e *msgpack.Encoder, v []float64) error {
	if err := e.EncodeArrayLen(len(v)); err != nil {
		return err
	}
	for _, f := range v {
		if err := e.EncodeFloat64(f); err != nil {
			return err
		}
	}
	return nil
}

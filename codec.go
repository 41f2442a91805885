package dict

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Serialize encodes the dictionary as a self-describing MessagePack
// byte sequence: maps as map headers with string keys, leaves with
// their native scalar/string/array tags.  Keys are written in sorted
// order so equal trees always produce equal bytes.
func (d *Dictionary) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := d.serialize(enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Dictionary) serialize(enc *msgpack.Encoder) error {
	if d.IsValue() {
		return d.value.ops.encode(enc)
	}
	if err := enc.EncodeMapLen(len(d.children)); err != nil {
		return err
	}
	keys := make([]string, 0, len(d.children))
	for key := range d.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := enc.EncodeString(key); err != nil {
			return err
		}
		if err := d.children[key].serialize(enc); err != nil {
			return fmt.Errorf("at key %q: %w", key, err)
		}
	}
	return nil
}

// UpdateBytes merges a MessagePack payload into the dictionary.
// Payloads for existing keys decode into the existing leaf's bound
// type; payloads for new keys create leaves with types inferred from
// their wire tags.  A nil payload is a skip marker: the subtree it
// addresses is left untouched.
func (d *Dictionary) UpdateBytes(data []byte) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	return d.updateFrom(dec)
}

func (d *Dictionary) updateFrom(dec *msgpack.Decoder) error {
	code, err := peekCode(dec)
	if err != nil {
		return err
	}
	if code == msgpcode.Nil {
		if err := dec.Skip(); err != nil {
			return wireErr("nil", err)
		}
		logger.Debug().Msg("update: nil payload, skipping subtree")
		return nil
	}
	if isMapCode(code) {
		if d.IsValue() {
			// Map-shaped payload replaces the value, but only
			// once the whole payload has decoded.
			fresh := New()
			if err := fresh.updateFrom(dec); err != nil {
				return err
			}
			d.value = nil
			d.children = fresh.children
			return nil
		}
		n, err := dec.DecodeMapLen()
		if err != nil {
			return wireErr("map header", err)
		}
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return wireErr("map key", err)
			}
			vcode, err := peekCode(dec)
			if err != nil {
				return err
			}
			if vcode == msgpcode.Nil {
				if err := dec.Skip(); err != nil {
					return wireErr("nil", err)
				}
				logger.Debug().Str("key", key).Msg("update: nil payload, skipping subtree")
				continue
			}
			if child, ok := d.children[key]; ok {
				if err := child.updateFrom(dec); err != nil {
					return fmt.Errorf("at key %q: %w", key, err)
				}
			} else if err := d.insertFromWire(key, dec); err != nil {
				return fmt.Errorf("at key %q: %w", key, err)
			}
		}
		return nil
	}
	if d.IsValue() {
		return d.value.ops.decode(dec)
	}
	// Scalar payload replaces a map (or fills an empty node) with a
	// value of the inferred type.  Inference runs on a scratch node
	// so a rejected payload leaves the entries in place.
	var fresh Dictionary
	if err := fresh.assignFromWire(dec); err != nil {
		return err
	}
	d.value = fresh.value
	d.children = nil
	return nil
}

// ExtendBytes inserts new key-value pairs from a MessagePack payload.
// Unlike UpdateBytes, keys that already exist are warned about and
// their payloads skipped.  Both the dictionary and the payload must
// be maps.
func (d *Dictionary) ExtendBytes(data []byte) error {
	if d.IsValue() {
		return typeErrorf("cannot extend a value of type %q", d.value.typ)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	code, err := peekCode(dec)
	if err != nil {
		return err
	}
	if !isMapCode(code) {
		return typeErrorf("expecting a map payload to extend from, got wire tag 0x%02x", code)
	}
	n, err := dec.DecodeMapLen()
	if err != nil {
		return wireErr("map header", err)
	}
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return wireErr("map key", err)
		}
		if _, ok := d.children[key]; ok {
			logger.Warn().Str("key", key).Msg("extend: key already exists, ignoring payload")
			if err := dec.Skip(); err != nil {
				return wireErr("skipped value", err)
			}
			continue
		}
		if err := d.insertFromWire(key, dec); err != nil {
			return fmt.Errorf("at key %q: %w", key, err)
		}
	}
	return nil
}

// insertFromWire creates the child at key from the next wire element,
// inferring its type from the wire tag.  A rejected payload removes
// the freshly created child again, so failed inserts do not change
// the key set.
func (d *Dictionary) insertFromWire(key string, dec *msgpack.Decoder) error {
	code, err := peekCode(dec)
	if err != nil {
		return err
	}
	child, err := d.Child(key)
	if err != nil {
		return err
	}
	if isMapCode(code) {
		err = child.updateFrom(dec)
	} else {
		err = child.assignFromWire(dec)
	}
	if err != nil {
		delete(d.children, key)
	}
	return err
}

// assignFromWire binds this node to a fresh leaf whose type is
// inferred from the next wire element.  The caller has already ruled
// out map payloads and calls this on a node with nothing to lose.
func (d *Dictionary) assignFromWire(dec *msgpack.Decoder) error {
	code, err := peekCode(dec)
	if err != nil {
		return err
	}
	if isArrayCode(code) {
		return d.assignArrayFromWire(dec)
	}
	switch scalarLeafKind(code) {
	case leafBool:
		v, err := dec.DecodeBool()
		if err != nil {
			return wireErr("bool", err)
		}
		return bindLeaf(d, v)
	case leafInt:
		v, err := dec.DecodeInt64()
		if err != nil {
			return wireErr("int", err)
		}
		return bindLeaf(d, v)
	case leafUint:
		v, err := dec.DecodeUint64()
		if err != nil {
			return wireErr("uint", err)
		}
		return bindLeaf(d, v)
	case leafFloat32:
		v, err := dec.DecodeFloat32()
		if err != nil {
			return wireErr("float32", err)
		}
		return bindLeaf(d, v)
	case leafFloat64:
		v, err := dec.DecodeFloat64()
		if err != nil {
			return wireErr("float64", err)
		}
		return bindLeaf(d, v)
	case leafString:
		v, err := dec.DecodeString()
		if err != nil {
			return wireErr("string", err)
		}
		return bindLeaf(d, v)
	default:
		if isBinCode(code) {
			return typeErrorf("cannot infer a leaf type for a binary payload")
		}
		return typeErrorf("cannot infer a leaf type for wire tag 0x%02x", code)
	}
}

func (d *Dictionary) assignArrayFromWire(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return wireErr("array header", err)
	}
	if n == 0 {
		return typeErrorf("cannot infer a leaf type for an empty array")
	}
	code, err := peekCode(dec)
	if err != nil {
		return err
	}
	if isArrayCode(code) {
		rows := make([][]float64, n)
		for i := range rows {
			rows[i], err = readFloatArray(dec)
			if err != nil {
				return fmt.Errorf("array row %d: %w", i, err)
			}
		}
		return bindLeaf(d, rows)
	}
	elems := make([]float64, n)
	for i := range elems {
		elems[i], err = readFloat(dec)
		if err != nil {
			return fmt.Errorf("array element %d: %w", i, err)
		}
	}
	switch arrayLeafKind(n) {
	case leafVector2:
		return bindLeaf(d, Vector2{elems[0], elems[1]})
	case leafVector3:
		return bindLeaf(d, Vector3{elems[0], elems[1], elems[2]})
	case leafQuaternion:
		return bindLeaf(d, Quaternion{elems[0], elems[1], elems[2], elems[3]})
	case leafMatrix3:
		var m Matrix3
		copy(m[:], elems)
		return bindLeaf(d, m)
	default:
		return bindLeaf(d, elems)
	}
}

// bindLeaf replaces this node's state with a fresh cell holding v.
func bindLeaf[T any](d *Dictionary, v T) error {
	c, err := newCell(v)
	if err != nil {
		return err
	}
	d.value = c
	d.children = nil
	return nil
}

// Wire tag helpers.  vmihailenco's msgpcode covers strings and bins;
// the map/array/int families are classified here.

func peekCode(dec *msgpack.Decoder) (byte, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return 0, wireErr("peek", err)
	}
	return code, nil
}

func isBoolCode(c byte) bool {
	return c == msgpcode.False || c == msgpcode.True
}

func isIntCode(c byte) bool {
	return msgpcode.IsFixedNum(c) ||
		c == msgpcode.Int8 || c == msgpcode.Int16 ||
		c == msgpcode.Int32 || c == msgpcode.Int64
}

func isUintCode(c byte) bool {
	return c == msgpcode.Uint8 || c == msgpcode.Uint16 ||
		c == msgpcode.Uint32 || c == msgpcode.Uint64
}

func isStringCode(c byte) bool {
	return msgpcode.IsString(c)
}

func isBinCode(c byte) bool {
	return msgpcode.IsBin(c)
}

func isArrayCode(c byte) bool {
	return msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32
}

func isMapCode(c byte) bool {
	return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32
}

func wireErr(what string, err error) error {
	return &InternalError{Message: "decode " + what, Err: err}
}

// readFloat reads one numeric element as float64, accepting float,
// double and integer tags the way MessagePack readers conventionally
// coerce numeric arrays.
func readFloat(dec *msgpack.Decoder) (float64, error) {
	code, err := peekCode(dec)
	if err != nil {
		return 0, err
	}
	switch {
	case code == msgpcode.Float:
		v, err := dec.DecodeFloat32()
		if err != nil {
			return 0, wireErr("float", err)
		}
		return float64(v), nil
	case code == msgpcode.Double:
		v, err := dec.DecodeFloat64()
		if err != nil {
			return 0, wireErr("double", err)
		}
		return v, nil
	case isIntCode(code):
		v, err := dec.DecodeInt64()
		if err != nil {
			return 0, wireErr("int", err)
		}
		return float64(v), nil
	case isUintCode(code):
		v, err := dec.DecodeUint64()
		if err != nil {
			return 0, wireErr("uint", err)
		}
		return float64(v), nil
	default:
		return 0, typeErrorf("expecting a number, got wire tag 0x%02x", code)
	}
}

// readFloatArray reads one flat numeric array, header included.
func readFloatArray(dec *msgpack.Decoder) ([]float64, error) {
	code, err := peekCode(dec)
	if err != nil {
		return nil, err
	}
	if !isArrayCode(code) {
		return nil, typeErrorf("expecting a numeric array, got wire tag 0x%02x", code)
	}
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, wireErr("array header", err)
	}
	out := make([]float64, n)
	for i := range out {
		out[i], err = readFloat(dec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

// readFloatArrayList reads an array of flat numeric arrays, header
// included.  Deeper nesting is rejected by readFloat.
func readFloatArrayList(dec *msgpack.Decoder) ([][]float64, error) {
	code, err := peekCode(dec)
	if err != nil {
		return nil, err
	}
	if !isArrayCode(code) {
		return nil, typeErrorf("expecting an array of numeric arrays, got wire tag 0x%02x", code)
	}
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, wireErr("array header", err)
	}
	out := make([][]float64, n)
	for i := range out {
		out[i], err = readFloatArray(dec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return out, nil
}

package dict

import (
	"bytes"
	"fmt"
)

// Difference returns the minimal subtree of d whose values are absent
// from other or differ from other's values at the same path.  Leaves
// are compared by their wire encodings, so two types that serialize
// identically compare equal.  The result owns fresh copies and shares
// no storage with either input; an identical pair yields an empty
// dictionary.
func (d *Dictionary) Difference(other *Dictionary) (*Dictionary, error) {
	out := New()
	if err := difference(d, other, out); err != nil {
		return nil, err
	}
	return out, nil
}

func difference(a, b, out *Dictionary) error {
	if a.IsEmpty() {
		return nil
	}
	if a.IsValue() {
		if b != nil && b.IsValue() {
			abytes, err := a.value.encodeBytes()
			if err != nil {
				return err
			}
			bbytes, err := b.value.encodeBytes()
			if err != nil {
				return err
			}
			if bytes.Equal(abytes, bbytes) {
				return nil
			}
		}
		c, err := a.value.clone()
		if err != nil {
			return err
		}
		out.value = c
		out.children = nil
		return nil
	}
	for key, child := range a.children {
		var bchild *Dictionary
		if b != nil {
			bchild = b.children[key]
		}
		sub := New()
		if err := difference(child, bchild, sub); err != nil {
			return fmt.Errorf("at key %q: %w", key, err)
		}
		if !sub.IsEmpty() {
			if out.children == nil {
				out.children = map[string]*Dictionary{}
			}
			out.children[key] = sub
		}
	}
	return nil
}

// Update merges other's values onto d under the same rules as
// UpdateBytes, treating other as if it were first serialized: leaves
// at existing keys decode into the existing bound types, new keys are
// inserted with inferred types, and map/value shape conversions apply
// at every level.  An empty incoming dictionary is a no-op.
//
// This is the single entry point for tree-to-tree merging, so the
// semantics can be swapped wholesale if a different interpretation is
// ever needed.
func (d *Dictionary) Update(other *Dictionary) error {
	if other.IsEmpty() {
		return nil
	}
	data, err := other.Serialize()
	if err != nil {
		return fmt.Errorf("serialize incoming: %w", err)
	}
	return d.UpdateBytes(data)
}

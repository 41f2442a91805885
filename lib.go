package dict

// Dictionary is a tree node that is exactly one of three things:
// empty, a single typed value, or a map of child Dictionaries keyed
// by string.  Children are exclusively owned by their parent.  A node
// is a map iff it is not a value; empty is the degenerate map with no
// entries.
type Dictionary struct {
	value    *cell
	children map[string]*Dictionary
}

// Item is one (key, child) entry of a map node.
type Item struct {
	Key   string
	Value *Dictionary
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{}
}

// IsMap reports whether the node is a (possibly empty) map.
func (d *Dictionary) IsMap() bool {
	return d.value == nil
}

// IsEmpty reports whether the node is a map with no entries.
func (d *Dictionary) IsEmpty() bool {
	return d.value == nil && len(d.children) == 0
}

// IsValue reports whether the node holds a single typed value.
func (d *Dictionary) IsValue() bool {
	return d.value != nil
}

// Has reports whether key is present.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.children[key]
	return ok
}

// Len returns the number of entries of a map node, zero otherwise.
func (d *Dictionary) Len() int {
	return len(d.children)
}

// Child returns the child at key, creating an empty child if absent.
// Fails with a TypeError on a value node.
func (d *Dictionary) Child(key string) (*Dictionary, error) {
	if d.IsValue() {
		return nil, typeErrorf("cannot look up key %q in a value of type %q",
			key, d.value.typ)
	}
	child, ok := d.children[key]
	if !ok {
		child = New()
		if d.children == nil {
			d.children = map[string]*Dictionary{}
		}
		d.children[key] = child
	}
	return child, nil
}

// At returns the child at key without creating it.  Fails with a
// KeyError if absent, a TypeError on a value node.
func (d *Dictionary) At(key string) (*Dictionary, error) {
	if d.IsValue() {
		return nil, typeErrorf("cannot look up key %q in a value of type %q",
			key, d.value.typ)
	}
	child, ok := d.children[key]
	if !ok {
		return nil, &KeyError{Key: key}
	}
	return child, nil
}

// Keys returns a snapshot of the map's keys in unspecified order.
// Fails with a TypeError on a value node; an empty node yields an
// empty slice.
func (d *Dictionary) Keys() ([]string, error) {
	if d.IsValue() {
		return nil, typeErrorf("cannot list keys of a value of type %q", d.value.typ)
	}
	keys := make([]string, 0, len(d.children))
	for key := range d.children {
		keys = append(keys, key)
	}
	return keys, nil
}

// Items returns a snapshot of the map's entries in unspecified order.
func (d *Dictionary) Items() ([]Item, error) {
	if d.IsValue() {
		return nil, typeErrorf("cannot list items of a value of type %q", d.value.typ)
	}
	items := make([]Item, 0, len(d.children))
	for key, child := range d.children {
		items = append(items, Item{Key: key, Value: child})
	}
	return items, nil
}

// Values returns a snapshot of the map's children in unspecified
// order.
func (d *Dictionary) Values() ([]*Dictionary, error) {
	if d.IsValue() {
		return nil, typeErrorf("cannot list values of a value of type %q", d.value.typ)
	}
	values := make([]*Dictionary, 0, len(d.children))
	for _, child := range d.children {
		values = append(values, child)
	}
	return values, nil
}

// Remove deletes the child at key.  Removing an absent key is a
// logged no-op, not an error.
func (d *Dictionary) Remove(key string) {
	if _, ok := d.children[key]; !ok {
		logger.Error().Str("key", key).Msg("remove: no key to remove")
		return
	}
	delete(d.children, key)
}

// Clear resets the node to empty, discarding the value or all entries
// it held.
func (d *Dictionary) Clear() {
	d.value = nil
	d.children = nil
}

// PopItem removes and returns one arbitrary entry.  Fails with a
// TypeError on a value node, a KeyError when the map is empty.
func (d *Dictionary) PopItem() (string, *Dictionary, error) {
	if d.IsValue() {
		return "", nil, typeErrorf("cannot pop an item from a value of type %q", d.value.typ)
	}
	for key, child := range d.children {
		delete(d.children, key)
		return key, child, nil
	}
	return "", nil, &KeyError{}
}

// DeepCopy returns an independently owned copy of the tree, produced
// by round-tripping every leaf through the codec.  Bound leaf types
// are preserved.
func (d *Dictionary) DeepCopy() (*Dictionary, error) {
	out := New()
	if d.IsValue() {
		c, err := d.value.clone()
		if err != nil {
			return nil, err
		}
		out.value = c
		return out, nil
	}
	for key, child := range d.children {
		copied, err := child.DeepCopy()
		if err != nil {
			return nil, err
		}
		if out.children == nil {
			out.children = map[string]*Dictionary{}
		}
		out.children[key] = copied
	}
	return out, nil
}

package dict

import "errors"

// The typed accessors are package-level generic functions rather than
// methods, since Go methods cannot introduce type parameters.  They
// all enforce the cell's bound type: once a key holds a T, reading or
// assigning it as any other type fails with a TypeError.

// As returns a pointer to the value held by a value node.  Fails with
// a TypeError if the node is not a value or holds a different type.
func As[T any](d *Dictionary) (*T, error) {
	if !d.IsValue() {
		return nil, typeErrorf("node is not a value")
	}
	return cellRef[T](d.value)
}

// Get returns a pointer to the value at key.  The pointer stays valid
// until the entry is removed or reassigned, so hot loops can resolve
// a key once and write through the pointer afterwards.
//
// Fails with a KeyError if the key is absent, a TypeError if the
// child is a map or holds a different type than T.
func Get[T any](d *Dictionary, key string) (*T, error) {
	if d.IsValue() {
		return nil, typeErrorf("cannot look up key %q in a value of type %q",
			key, d.value.typ)
	}
	child, ok := d.children[key]
	if !ok {
		return nil, &KeyError{Key: key}
	}
	if !child.IsValue() {
		return nil, typeErrorf("child at key %q is not a value", key)
	}
	return cellRef[T](child.value)
}

// GetDefault returns the value at key, or def (by value) if the key
// is absent.  A present entry is still type-checked.
func GetDefault[T any](d *Dictionary, key string, def T) (T, error) {
	p, err := Get[T](d, key)
	if err != nil {
		var keyErr *KeyError
		if errors.As(err, &keyErr) {
			return def, nil
		}
		return def, err
	}
	return *p, nil
}

// Insert binds a new value of type T at key and returns a pointer to
// it.  If the key already holds something, the existing value is
// returned unchanged and a warning is logged; insert never
// overwrites.
//
// Fails with a TypeError if d is a value node, or if the existing
// entry is a map or holds a different type than T.
func Insert[T any](d *Dictionary, key string, value T) (*T, error) {
	if d.IsValue() {
		return nil, typeErrorf("cannot insert at key %q in a value of type %q",
			key, d.value.typ)
	}
	child, err := d.Child(key)
	if err != nil {
		return nil, err
	}
	if !child.IsEmpty() {
		logger.Warn().Str("key", key).
			Msg("insert: key already exists, returning existing value")
		if !child.IsValue() {
			return nil, typeErrorf("child at key %q is not a value", key)
		}
		return cellRef[T](child.value)
	}
	c, err := newCell(value)
	if err != nil {
		delete(d.children, key)
		return nil, err
	}
	child.value = c
	return cellRef[T](c)
}

// SetDefault returns a pointer to the value at key, binding def there
// first if the key is absent or empty.  Unlike Insert it is silent,
// and unlike GetDefault it fails with a TypeError when the existing
// entry is a map or has a different type than T, instead of handing
// back a default.
func SetDefault[T any](d *Dictionary, key string, def T) (*T, error) {
	if d.IsValue() {
		return nil, typeErrorf("cannot set default at key %q in a value of type %q",
			key, d.value.typ)
	}
	child, err := d.Child(key)
	if err != nil {
		return nil, err
	}
	if !child.IsEmpty() {
		if !child.IsValue() {
			return nil, typeErrorf("child at key %q is not a value", key)
		}
		return cellRef[T](child.value)
	}
	c, err := newCell(def)
	if err != nil {
		delete(d.children, key)
		return nil, err
	}
	child.value = c
	return cellRef[T](c)
}

// Pop removes the entry at key and returns its value.  Same failure
// modes as Get.
func Pop[T any](d *Dictionary, key string) (T, error) {
	p, err := Get[T](d, key)
	if err != nil {
		var zero T
		return zero, err
	}
	v := *p
	delete(d.children, key)
	return v, nil
}

// PopDefault removes the entry at key and returns its value, or def
// if the key is absent.  A present entry is still type-checked.
func PopDefault[T any](d *Dictionary, key string, def T) (T, error) {
	v, err := Pop[T](d, key)
	if err != nil {
		var keyErr *KeyError
		if errors.As(err, &keyErr) {
			return def, nil
		}
		return def, err
	}
	return v, nil
}

// Assign sets this node's value directly.  A map node is cleared
// first and becomes a value.  Fails with a TypeError if the node
// already holds a value of a different type.
func Assign[T any](d *Dictionary, value T) error {
	if d.IsValue() {
		p, err := cellRef[T](d.value)
		if err != nil {
			return err
		}
		*p = value
		return nil
	}
	d.children = nil
	return bindLeaf(d, value)
}

// FromKeys builds a flat map with an empty entry for every name.
// Duplicate names collapse to one entry.
func FromKeys(names []string) *Dictionary {
	d := New()
	for _, name := range names {
		_, _ = d.Child(name)
	}
	return d
}

// FromKeysWith builds a flat map assigning the same value to every
// name.  Duplicate names collapse to one entry.
func FromKeysWith[T any](names []string, value T) (*Dictionary, error) {
	d := New()
	for _, name := range names {
		child, _ := d.Child(name)
		if child.IsEmpty() {
			if err := bindLeaf(child, value); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

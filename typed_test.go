package dict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndGet(t *testing.T) {
	t.Parallel()
	d := New()
	_, err := Insert(d, "bar", "foo")
	require.NoError(t, err)
	_, err = Insert(d, "count", int64(12))
	require.NoError(t, err)

	bar, err := Get[string](d, "bar")
	require.NoError(t, err)
	require.Equal(t, "foo", *bar)
	count, err := Get[int64](d, "count")
	require.NoError(t, err)
	require.Equal(t, int64(12), *count)

	var keyErr *KeyError
	_, err = Get[string](d, "missing")
	require.ErrorAs(t, err, &keyErr)

	var typeErr *TypeError
	_, err = Get[bool](d, "bar")
	require.ErrorAs(t, err, &typeErr)

	_, err = d.Child("sub")
	require.NoError(t, err)
	_, err = Get[string](d, "sub")
	require.ErrorAs(t, err, &typeErr)
}

func TestGetWritesThrough(t *testing.T) {
	t.Parallel()
	d := New()
	_, err := Insert(d, "position", Vector3{0, 0, 0})
	require.NoError(t, err)
	p, err := Get[Vector3](d, "position")
	require.NoError(t, err)
	p[2] = 0.87

	again, err := Get[Vector3](d, "position")
	require.NoError(t, err)
	require.Equal(t, Vector3{0, 0, 0.87}, *again)
	require.Equal(t, `{"position": [0, 0, 0.87]}`, d.String())
}

func TestInsertExistingKeeps(t *testing.T) {
	d := New()
	first, err := Insert(d, "k", int64(1))
	require.NoError(t, err)

	buf := captureLog(t)
	second, err := Insert(d, "k", int64(5))
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, int64(1), *second)
	assert.Contains(t, buf.String(), "key already exists")

	// an existing entry of another shape or type still fails
	var typeErr *TypeError
	_, err = Insert(d, "k", "words")
	require.ErrorAs(t, err, &typeErr)
	_, err = d.Child("sub")
	require.NoError(t, err)
	_, err = Insert(d, "sub", int64(2))
	require.ErrorAs(t, err, &typeErr)
}

func TestInsertOnValueNode(t *testing.T) {
	t.Parallel()
	d := New()
	require.NoError(t, Assign(d, int64(3)))
	var typeErr *TypeError
	_, err := Insert(d, "k", int64(1))
	require.ErrorAs(t, err, &typeErr)
}

func TestInsertUnsupportedType(t *testing.T) {
	t.Parallel()
	d := New()
	var typeErr *TypeError
	_, err := Insert(d, "k", struct{ X int }{})
	require.ErrorAs(t, err, &typeErr)
	require.False(t, d.Has("k"))
}

func TestGetDefault(t *testing.T) {
	t.Parallel()
	d := New()
	v, err := GetDefault(d, "absent", int64(41))
	require.NoError(t, err)
	require.Equal(t, int64(41), v)
	require.False(t, d.Has("absent"))

	_, err = Insert(d, "present", int64(7))
	require.NoError(t, err)
	v, err = GetDefault(d, "present", int64(41))
	require.NoError(t, err)
	require.Equal(t, int64(7), v)

	var typeErr *TypeError
	_, err = GetDefault(d, "present", "nope")
	require.ErrorAs(t, err, &typeErr)
}

func TestSetDefault(t *testing.T) {
	t.Parallel()
	d := New()
	v, err := SetDefault(d, "mode", "walking")
	require.NoError(t, err)
	require.Equal(t, "walking", *v)
	require.True(t, d.Has("mode"))

	again, err := SetDefault(d, "mode", "standing")
	require.NoError(t, err)
	require.Same(t, v, again)
	require.Equal(t, "walking", *again)

	var typeErr *TypeError
	_, err = SetDefault(d, "mode", int64(1))
	require.ErrorAs(t, err, &typeErr)

	_, err = d.Child("sub")
	require.NoError(t, err)
	_, err = SetDefault(d, "sub", "x")
	require.ErrorAs(t, err, &typeErr)
}

func TestPop(t *testing.T) {
	t.Parallel()
	d := New()
	_, err := Insert(d, "k", int64(9))
	require.NoError(t, err)
	v, err := Pop[int64](d, "k")
	require.NoError(t, err)
	require.Equal(t, int64(9), v)
	require.False(t, d.Has("k"))

	var keyErr *KeyError
	_, err = Pop[int64](d, "k")
	require.ErrorAs(t, err, &keyErr)
}

func TestPopDefault(t *testing.T) {
	t.Parallel()
	d := New()
	v, err := PopDefault(d, "absent", int64(-1))
	require.NoError(t, err)
	require.Equal(t, int64(-1), v)

	_, err = Insert(d, "k", int64(2))
	require.NoError(t, err)
	v, err = PopDefault(d, "k", int64(-1))
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
	require.False(t, d.Has("k"))

	var typeErr *TypeError
	_, err = Insert(d, "s", "words")
	require.NoError(t, err)
	_, err = PopDefault(d, "s", int64(-1))
	require.ErrorAs(t, err, &typeErr)
	require.True(t, d.Has("s"))
}

func TestAssign(t *testing.T) {
	t.Parallel()
	d := New()
	require.NoError(t, Assign(d, int64(1)))
	require.True(t, d.IsValue())
	v, err := As[int64](d)
	require.NoError(t, err)
	require.Equal(t, int64(1), *v)

	// same type overwrites in place
	require.NoError(t, Assign(d, int64(2)))
	require.Equal(t, int64(2), *v)

	// a different type does not rebind the cell
	var typeErr *TypeError
	require.ErrorAs(t, Assign(d, "nope"), &typeErr)
	require.Equal(t, int64(2), *v)

	// a map node is cleared and becomes a value
	m := New()
	_, err = Insert(m, "k", int64(1))
	require.NoError(t, err)
	require.NoError(t, Assign(m, 3.5))
	require.True(t, m.IsValue())
	f, err := As[float64](m)
	require.NoError(t, err)
	require.Equal(t, 3.5, *f)
}

func TestAs(t *testing.T) {
	t.Parallel()
	d := New()
	var typeErr *TypeError
	_, err := As[int64](d)
	require.ErrorAs(t, err, &typeErr)

	require.NoError(t, Assign(d, Quaternion{1, 0, 0, 0}))
	q, err := As[Quaternion](d)
	require.NoError(t, err)
	require.Equal(t, Quaternion{1, 0, 0, 0}, *q)
	_, err = As[Vector3](d)
	require.ErrorAs(t, err, &typeErr)
}

func TestFromKeys(t *testing.T) {
	t.Parallel()
	d := FromKeys([]string{"a", "b", "b"})
	require.Equal(t, 2, d.Len())
	child, err := d.At("a")
	require.NoError(t, err)
	require.True(t, child.IsEmpty())
}

func TestFromKeysWith(t *testing.T) {
	t.Parallel()
	d, err := FromKeysWith([]string{"x", "y"}, int64(0))
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	v, err := Get[int64](d, "x")
	require.NoError(t, err)
	require.Equal(t, int64(0), *v)

	_, err = FromKeysWith([]string{"x"}, struct{}{})
	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
}

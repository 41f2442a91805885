package dict

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/arbitrary"
	"github.com/stretchr/testify/require"
)

func newConfig(t *testing.T, port int64) *Dictionary {
	t.Helper()
	d := New()
	server, err := d.Child("server")
	require.NoError(t, err)
	_, err = Insert(server, "port", port)
	require.NoError(t, err)
	_, err = Insert(server, "host", "localhost")
	require.NoError(t, err)
	_, err = Insert(d, "verbose", false)
	require.NoError(t, err)
	return d
}

func TestDifferenceWithSelf(t *testing.T) {
	t.Parallel()
	d := newConfig(t, 8080)
	diff, err := d.Difference(d)
	require.NoError(t, err)
	require.True(t, diff.IsEmpty())

	copied, err := d.DeepCopy()
	require.NoError(t, err)
	diff, err = d.Difference(copied)
	require.NoError(t, err)
	require.True(t, diff.IsEmpty())
}

func TestDifferenceNestedValue(t *testing.T) {
	t.Parallel()
	a := newConfig(t, 8080)
	b := newConfig(t, 9090)
	diff, err := a.Difference(b)
	require.NoError(t, err)
	require.Equal(t, `{"server": {"port": 8080}}`, diff.String())
}

func TestDifferenceUniqueKeys(t *testing.T) {
	t.Parallel()
	a := New()
	_, err := Insert(a, "shared", int64(1))
	require.NoError(t, err)
	_, err = Insert(a, "only_a", int64(2))
	require.NoError(t, err)
	b := New()
	_, err = Insert(b, "shared", int64(1))
	require.NoError(t, err)
	_, err = Insert(b, "only_b", int64(3))
	require.NoError(t, err)

	diff, err := a.Difference(b)
	require.NoError(t, err)
	require.Equal(t, `{"only_a": 2}`, diff.String())
}

func TestDifferenceVector(t *testing.T) {
	t.Parallel()
	a := New()
	_, err := Insert(a, "position", Vector3{1, 2, 3})
	require.NoError(t, err)
	b := New()
	_, err = Insert(b, "position", Vector3{1, 2, 4})
	require.NoError(t, err)

	diff, err := a.Difference(b)
	require.NoError(t, err)
	pos, err := Get[Vector3](diff, "position")
	require.NoError(t, err)
	require.Equal(t, Vector3{1, 2, 3}, *pos)

	// the copied leaf is independent of a
	ap, err := Get[Vector3](a, "position")
	require.NoError(t, err)
	ap[0] = 9
	require.Equal(t, Vector3{1, 2, 3}, *pos)
}

func TestDifferenceComparesWireBytes(t *testing.T) {
	t.Parallel()
	// distinct bound types with identical encodings compare equal
	a := New()
	_, err := Insert(a, "n", int32(5))
	require.NoError(t, err)
	b := New()
	_, err = Insert(b, "n", int64(5))
	require.NoError(t, err)
	diff, err := a.Difference(b)
	require.NoError(t, err)
	require.True(t, diff.IsEmpty())
}

func TestDifferenceShapeMismatch(t *testing.T) {
	t.Parallel()
	a := New()
	_, err := Insert(a, "k", int64(1))
	require.NoError(t, err)
	b := New()
	kb, err := b.Child("k")
	require.NoError(t, err)
	_, err = Insert(kb, "nested", int64(1))
	require.NoError(t, err)

	diff, err := a.Difference(b)
	require.NoError(t, err)
	require.Equal(t, `{"k": 1}`, diff.String())
}

func TestUpdateMerges(t *testing.T) {
	t.Parallel()
	d := New()
	_, err := Insert(d, "x", int64(1))
	require.NoError(t, err)
	_, err = Insert(d, "y", int64(2))
	require.NoError(t, err)

	other := New()
	_, err = Insert(other, "y", int64(3))
	require.NoError(t, err)
	_, err = Insert(other, "z", int64(4))
	require.NoError(t, err)

	require.NoError(t, d.Update(other))
	require.Equal(t, `{"x": 1, "y": 3, "z": 4}`, d.String())

	// the existing cell was updated in place, not rebound
	y, err := Get[int64](d, "y")
	require.NoError(t, err)
	require.Equal(t, int64(3), *y)
}

func TestUpdateEmptyIsNoop(t *testing.T) {
	t.Parallel()
	d := newConfig(t, 8080)
	before := d.String()
	require.NoError(t, d.Update(New()))
	require.Equal(t, before, d.String())
}

func TestUpdateConvertsShapes(t *testing.T) {
	t.Parallel()
	// value becomes map
	d := New()
	_, err := Insert(d, "k", int64(1))
	require.NoError(t, err)
	other := New()
	k, err := other.Child("k")
	require.NoError(t, err)
	_, err = Insert(k, "nested", "deep")
	require.NoError(t, err)
	require.NoError(t, d.Update(other))
	dk, err := d.At("k")
	require.NoError(t, err)
	require.True(t, dk.IsMap())

	// map becomes value
	back := New()
	_, err = Insert(back, "k", int64(5))
	require.NoError(t, err)
	require.NoError(t, d.Update(back))
	v, err := Get[int64](d, "k")
	require.NoError(t, err)
	require.Equal(t, int64(5), *v)
}

func TestUpdateDeepMergePreservesSiblings(t *testing.T) {
	t.Parallel()
	d := newConfig(t, 8080)
	other := New()
	server, err := other.Child("server")
	require.NoError(t, err)
	_, err = Insert(server, "port", int64(9090))
	require.NoError(t, err)

	require.NoError(t, d.Update(other))
	ds, err := d.At("server")
	require.NoError(t, err)
	host, err := Get[string](ds, "host")
	require.NoError(t, err)
	require.Equal(t, "localhost", *host)
	port, err := Get[int64](ds, "port")
	require.NoError(t, err)
	require.Equal(t, int64(9090), *port)
}

func TestDifferenceProperty(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)
	arbitraries := arbitrary.DefaultArbitraries()

	properties.Property("difference against empty reproduces the tree",
		arbitraries.ForAll(
			func(keys []string) bool {
				d := New()
				for _, key := range keys {
					if err := mustAssignString(d, key); err != nil {
						return false
					}
				}
				diff, err := d.Difference(New())
				if err != nil {
					return false
				}
				return diff.String() == d.String()
			}))

	properties.Property("updating with a difference reconciles the trees",
		arbitraries.ForAll(
			func(keys []string, changed []string) bool {
				a := New()
				for _, key := range append(keys, changed...) {
					if err := mustAssignString(a, key); err != nil {
						return false
					}
				}
				b := New()
				for _, key := range keys {
					if err := mustAssignString(b, key); err != nil {
						return false
					}
				}
				diff, err := a.Difference(b)
				if err != nil {
					return false
				}
				if err := b.Update(diff); err != nil {
					return false
				}
				return b.String() == a.String()
			}))
	properties.TestingRun(t)
}

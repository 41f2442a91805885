package dict

// Fixed catalog of geometric leaf types.  On the wire all of them are
// plain numeric arrays; the array length is what distinguishes them
// (see infer.go), so the catalog cannot be extended without changing
// the inference rules.

// Vector2 is a 2D vector, encoded as a 2-element numeric array.
type Vector2 [2]float64

// Vector3 is a 3D vector, encoded as a 3-element numeric array.
type Vector3 [3]float64

// Quaternion is a rotation, encoded as a 4-element numeric array with
// the scalar part first: [w, x, y, z].
type Quaternion [4]float64

// Matrix3 is a 3x3 matrix in row-major order, encoded as a 9-element
// numeric array.
type Matrix3 [9]float64

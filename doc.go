/*
Package dict provides a dynamically-typed dictionary tree with
strongly-typed leaves, a compact MessagePack wire encoding, and
structural diff/merge for delta compression.

A Dictionary is always exactly one of three things: empty, a single
typed value, or a map from string keys to child Dictionaries.  The
schema is not fixed at compile time, keys and subtrees appear as they
are written, but every leaf is bound to a concrete Go type on first
write and keeps that type for its whole lifetime.  Reading or updating
a leaf with the wrong type fails with a TypeError rather than silently
converting.

Uses

- State and telemetry pipelines (e.g. robot control loops) where a
handful of numeric fields mutate at kHz rates under a schema that
grows organically

- Delta compression of repeated serialized state: Difference produces
the minimal changed subtree, which encodes to a fraction of the full
payload

- Binary snapshots of configuration or observation trees, merged back
with per-leaf type checking

Wire format

Serialize produces standard MessagePack: maps encode as map headers
with string keys, leaves encode with their native scalar, string, or
array tags.  Decoding is dual-mode: payloads for keys that already
exist are decoded into the existing leaf's bound type, while payloads
for new keys get a type inferred from the wire tag.  Numeric arrays of
length 2, 3, 4 and 9 become Vector2, Vector3, Quaternion and Matrix3
leaves; other lengths become []float64.

Concurrency

A Dictionary has a single owner and no internal locking.  Concurrent
access from multiple goroutines must be serialized externally, for
example one Dictionary per producer with diffs merged on a consumer.
*/
package dict

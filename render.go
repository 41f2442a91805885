package dict

import (
	"sort"
	"strconv"
	"strings"
)

// String renders the tree as a JSON-like object literal for
// diagnostics: {} for an empty node, the literal value for a value
// node, and {"k1": ..., "k2": ...} with sorted keys for a map.
func (d *Dictionary) String() string {
	var b strings.Builder
	d.render(&b)
	return b.String()
}

func (d *Dictionary) render(b *strings.Builder) {
	if d.IsValue() {
		d.value.ops.render(b)
		return
	}
	keys := make([]string, 0, len(d.children))
	for key := range d.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(key))
		b.WriteString(": ")
		d.children[key].render(b)
	}
	b.WriteByte('}')
}

func renderBool(b *strings.Builder, v bool) {
	if v {
		b.WriteString("true")
	} else {
		b.WriteString("false")
	}
}

func renderInt(b *strings.Builder, v int64) {
	b.WriteString(strconv.FormatInt(v, 10))
}

func renderUint(b *strings.Builder, v uint64) {
	b.WriteString(strconv.FormatUint(v, 10))
}

func renderFloat(b *strings.Builder, v float64) {
	b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}

func renderString(b *strings.Builder, v string) {
	b.WriteString(strconv.Quote(v))
}

func renderFloats(b *strings.Builder, v []float64) {
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		renderFloat(b, f)
	}
	b.WriteByte(']')
}

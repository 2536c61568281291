package formats

import (
	"bytes"
	"encoding/json"

	"github.com/elliotchance/orderedmap/v3"
)

// Report is an ordered mapping from field or section name to a value. Values
// are scalars, nested *Report sections or []any lists. Both core decoders and
// the PNG/JPEG boundary produce this shape.
type Report struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewReport allocates an empty report.
func NewReport() *Report {
	return &Report{fields: orderedmap.NewOrderedMap[string, any]()}
}

// Set stores value under key. An existing key keeps its position.
func (r *Report) Set(key string, value any) {
	r.fields.Set(key, value)
}

// Get returns the value stored under key.
func (r *Report) Get(key string) (any, bool) {
	return r.fields.Get(key)
}

// Has reports whether key is present.
func (r *Report) Has(key string) bool {
	_, ok := r.fields.Get(key)
	return ok
}

// Len returns the number of top-level entries.
func (r *Report) Len() int {
	return r.fields.Len()
}

// Keys returns the keys in insertion order.
func (r *Report) Keys() []string {
	keys := make([]string, 0, r.fields.Len())
	for el := r.fields.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// Each calls fn for every entry in insertion order.
func (r *Report) Each(fn func(key string, value any)) {
	for el := r.fields.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}

// Section returns the nested report stored under key, creating it if needed.
// A non-report value under key is replaced.
func (r *Report) Section(key string) *Report {
	if v, ok := r.fields.Get(key); ok {
		if sub, ok := v.(*Report); ok {
			return sub
		}
	}
	sub := NewReport()
	r.fields.Set(key, sub)
	return sub
}

// Append adds value to the list stored under key, creating the list if needed.
func (r *Report) Append(key string, value any) {
	var list []any
	if v, ok := r.fields.Get(key); ok {
		list, _ = v.([]any)
	}
	r.fields.Set(key, append(list, value))
}

// MarshalJSON encodes the report as a JSON object, keeping key order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for el := r.fields.Front(); el != nil; el = el.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(el.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(el.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// setWarnings stores warnings as a list; nothing is stored when there are none.
func setWarnings(r *Report, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	list := make([]any, len(warnings))
	for i, w := range warnings {
		list[i] = w
	}
	r.Set("Warnings", list)
}

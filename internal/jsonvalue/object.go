package jsonvalue

import (
	"bytes"
	"encoding/json"
	"iter"
	"slices"
)

// Object is a JSON object that remembers member insertion order.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject(capacity int) *Object {
	return &Object{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

// ObjectOf builds an object from alternating keys and values.
func ObjectOf(pairs ...any) *Object {
	if len(pairs)%2 != 0 {
		panic("jsonvalue: ObjectOf needs key/value pairs")
	}
	o := NewObject(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1])
	}
	return o
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the member names in insertion order.
func (o *Object) Keys() []string {
	return slices.Clone(o.keys)
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set replaces the value of an existing member in place or appends a new
// member.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes a member, reporting whether it existed.
func (o *Object) Delete(key string) bool {
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
	return true
}

// Clone returns a shallow copy.
func (o *Object) Clone() *Object {
	values := make(map[string]any, len(o.values))
	for k, v := range o.values {
		values[k] = v
	}
	return &Object{keys: slices.Clone(o.keys), values: values}
}

// All iterates over the members in insertion order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// MarshalJSON preserves member order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping member order. Nested objects
// become *Object as well.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := DecodeBytes(data)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Object)
	if !ok {
		return ErrMalformed
	}
	*o = *decoded
	return nil
}

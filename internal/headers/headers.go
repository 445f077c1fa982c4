package headers

import (
	"github.com/indigo-web/utils/strcomp"
)

// Field is a single header line
type Field struct {
	Key   string
	Value string
}

// Headers is an ordered list of header fields. Fields are rendered in the
// order they were first set, keys are matched case-insensitively.
type Headers struct {
	fields []Field
}

func NewHeaders() *Headers {
	return &Headers{
		fields: make([]Field, 0, 4),
	}
}

// Get returns the first value for a header
func (h *Headers) Get(key string) (string, bool) {
	if i := h.index(key); i != -1 {
		return h.fields[i].Value, true
	}
	return "", false
}

// GetAll returns all values for a header
func (h *Headers) GetAll(key string) []string {
	var values []string
	for _, f := range h.fields {
		if strcomp.EqualFold(f.Key, key) {
			values = append(values, f.Value)
		}
	}
	return values
}

// Fields returns the fields in wire order
func (h *Headers) Fields() []Field {
	return h.fields
}

// Len returns the number of fields
func (h *Headers) Len() int {
	return len(h.fields)
}

// Set replaces all values for a header, keeping the position of the first one
func (h *Headers) Set(key, value string) {
	i := h.index(key)
	if i == -1 {
		h.fields = append(h.fields, Field{Key: key, Value: value})
		return
	}

	h.fields[i].Value = value
	h.delFrom(i+1, key)
}

// Add appends a value to a header
func (h *Headers) Add(key, value string) {
	h.fields = append(h.fields, Field{Key: key, Value: value})
}

// Del removes a header
func (h *Headers) Del(key string) {
	h.delFrom(0, key)
}

// Reset drops all fields but keeps the allocated space
func (h *Headers) Reset() {
	h.fields = h.fields[:0]
}

func (h *Headers) index(key string) int {
	for i, f := range h.fields {
		if strcomp.EqualFold(f.Key, key) {
			return i
		}
	}
	return -1
}

func (h *Headers) delFrom(start int, key string) {
	kept := h.fields[:start]
	for _, f := range h.fields[start:] {
		if !strcomp.EqualFold(f.Key, key) {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}

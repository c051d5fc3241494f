package types

import (
	"iter"
	"slices"
	"strings"
)

// Entry is one metadata field: a name and every value stored under it.
type Entry struct {
	Name   string
	Values []string
}

// Metadata is an ordered list of metadata fields.
//
// Fields keep the order in which they first appear in the file. Names are
// grouped case-insensitively: adding "loopstart" after "LOOPSTART" appends a
// value to the existing field and keeps the first spelling.
//
// The zero value is an empty list ready to use.
type Metadata struct {
	entries []Entry
}

// Add appends values to the field called name, creating it if needed.
//
// Calling Add with no values still creates the field, which lets formats
// record a key that carries no payload.
func (m *Metadata) Add(name string, values ...string) {
	if i := m.index(name); i >= 0 {
		m.entries[i].Values = append(m.entries[i].Values, values...)
		return
	}
	m.entries = append(m.entries, Entry{Name: name, Values: slices.Clone(values)})
}

// Len returns the number of distinct fields.
func (m *Metadata) Len() int {
	return len(m.entries)
}

// At returns the i-th field. It panics if i is out of range.
func (m *Metadata) At(i int) Entry {
	return m.entries[i]
}

// All iterates fields in file order.
//
// The yielded slices must not be modified.
func (m *Metadata) All() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, e := range m.entries {
			if !yield(e.Name, e.Values) {
				return
			}
		}
	}
}

// Get returns a copy of the values stored under name (case-insensitive).
func (m *Metadata) Get(name string) []string {
	i := m.index(name)
	if i < 0 {
		return nil
	}
	return slices.Clone(m.entries[i].Values)
}

// GetFirst returns the first value stored under name, or "".
func (m *Metadata) GetFirst(name string) string {
	i := m.index(name)
	if i < 0 || len(m.entries[i].Values) == 0 {
		return ""
	}
	return m.entries[i].Values[0]
}

func (m *Metadata) index(name string) int {
	return slices.IndexFunc(m.entries, func(e Entry) bool {
		return strings.EqualFold(e.Name, name)
	})
}

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is one locale's catalog: an ordered mapping from category name to
// an ordered list of records.
//
// Go maps do not preserve key order, but category order is meaningful on the
// published site and must round-trip through the JSON files unchanged, so the
// document keeps an explicit key slice and implements its own JSON codec.
type Document struct {
	categories []string
	records    map[string][]*Record
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{records: make(map[string][]*Record)}
}

// Categories returns the category names in persisted order.
func (d *Document) Categories() []string {
	return append([]string(nil), d.categories...)
}

// Has reports whether the category exists (even if empty).
func (d *Document) Has(category string) bool {
	_, ok := d.records[category]
	return ok
}

// Records returns the record list of a category in order. The returned slice
// is the live backing slice; callers that mutate records do so deliberately
// inside the store's write queue.
func (d *Document) Records(category string) []*Record {
	return d.records[category]
}

// Len returns the number of records in a category.
func (d *Document) Len(category string) int {
	return len(d.records[category])
}

// AddCategory appends a new empty category if it does not exist yet.
func (d *Document) AddCategory(category string) {
	if d.Has(category) {
		return
	}
	d.categories = append(d.categories, category)
	d.records[category] = []*Record{}
}

// Append adds a record to the end of a category, creating the category if needed.
func (d *Document) Append(category string, r *Record) {
	d.AddCategory(category)
	d.records[category] = append(d.records[category], r)
}

// ReplaceAt swaps the record at (category, index).
func (d *Document) ReplaceAt(category string, index int, r *Record) error {
	list := d.records[category]
	if index < 0 || index >= len(list) {
		return fmt.Errorf("catalog: index %d out of range in category %q", index, category)
	}
	list[index] = r
	return nil
}

// RemoveAt deletes the record at (category, index). The category itself stays,
// even when it becomes empty.
func (d *Document) RemoveAt(category string, index int) error {
	list := d.records[category]
	if index < 0 || index >= len(list) {
		return fmt.Errorf("catalog: index %d out of range in category %q", index, category)
	}
	d.records[category] = append(list[:index], list[index+1:]...)
	return nil
}

// SetRecords replaces a category's record list wholesale (reordering).
func (d *Document) SetRecords(category string, records []*Record) {
	d.AddCategory(category)
	d.records[category] = records
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := NewDocument()
	for _, category := range d.categories {
		out.categories = append(out.categories, category)
		list := make([]*Record, 0, len(d.records[category]))
		for _, r := range d.records[category] {
			list = append(list, r.Clone())
		}
		out.records[category] = list
	}
	return out
}

// MarshalJSON emits the categories as a JSON object in persisted order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, category := range d.categories {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		list := d.records[category]
		if list == nil {
			list = []*Record{}
		}
		value, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object while preserving key order.
func (d *Document) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	open, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("catalog: document: %w", err)
	}
	if delim, ok := open.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("catalog: document must be a JSON object, got %v", open)
	}

	d.categories = nil
	d.records = make(map[string][]*Record)

	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("catalog: document key: %w", err)
		}
		category, ok := keyToken.(string)
		if !ok {
			return fmt.Errorf("catalog: document key is not a string: %v", keyToken)
		}

		var list []*Record
		if err := decoder.Decode(&list); err != nil {
			return fmt.Errorf("catalog: category %q: %w", category, err)
		}
		if list == nil {
			list = []*Record{}
		}

		if _, dup := d.records[category]; dup {
			return fmt.Errorf("catalog: duplicate category %q", category)
		}

		d.categories = append(d.categories, category)
		d.records[category] = list
	}

	// Consume the closing brace.
	if _, err := decoder.Token(); err != nil {
		return fmt.Errorf("catalog: document: %w", err)
	}

	return nil
}

// Set maps locale code to that locale's document.
type Set map[string]*Document

// Package answer binds user input to the fields of a form. Answers are kept
// in a Set keyed by field id and only turned into the ordered record list
// of the wire format when serialized.
package answer

import (
	"encoding/json"
	"strings"

	"github.com/G-Node/formdesk/formdesk/form"
)

// Record is the answer to one field in wire form.
type Record struct {
	FieldID int64  `json:"formfieldId"`
	Content string `json:"content"`
}

// Set holds at most one answer per field. Records keep the order in which
// their fields were first written.
type Set struct {
	content map[int64]string
	order   []int64
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{content: make(map[int64]string)}
}

// Default returns a Set with an empty answer for every field.
func Default(fields []form.Field) *Set {
	s := NewSet()
	for _, f := range fields {
		s.IndexOf(f.ID)
	}
	return s
}

// Clear returns the reset answer set for the fields. It is the same as
// Default; callers must have the user confirm before discarding answers.
func Clear(fields []form.Field) *Set {
	return Default(fields)
}

// FromRecords builds a Set from wire records. A later record for the same
// field replaces an earlier one.
func FromRecords(records []Record) *Set {
	s := NewSet()
	for _, r := range records {
		s.SetContent(r.FieldID, r.Content)
	}
	return s
}

// IndexOf returns the position of the field in the record order, adding an
// empty answer first if the field has none.
func (s *Set) IndexOf(fieldID int64) int {
	if s.content == nil {
		s.content = make(map[int64]string)
	}
	if _, ok := s.content[fieldID]; !ok {
		s.content[fieldID] = ""
		s.order = append(s.order, fieldID)
		return len(s.order) - 1
	}
	for idx, id := range s.order {
		if id == fieldID {
			return idx
		}
	}
	return -1
}

// SetContent replaces the answer of the field.
func (s *Set) SetContent(fieldID int64, content string) {
	s.IndexOf(fieldID)
	s.content[fieldID] = content
}

// Content returns the answer of the field and whether the set has one.
func (s *Set) Content(fieldID int64) (string, bool) {
	c, ok := s.content[fieldID]
	return c, ok
}

// Toggle flips the membership of value in the comma list answer of a
// multiple choice field and returns the new content. New values are
// appended; existing order is kept. A value containing a comma cannot be
// an item of the list and leaves the answer unchanged.
func (s *Set) Toggle(fieldID int64, value string) string {
	value = strings.TrimSpace(value)
	current, _ := s.Content(fieldID)
	if strings.Contains(value, ",") {
		return current
	}
	items := form.SplitSelection(current)
	kept := items[:0]
	found := false
	for _, item := range items {
		if item == value {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found && value != "" {
		kept = append(kept, value)
	}
	content := strings.Join(kept, ",")
	s.SetContent(fieldID, content)
	return content
}

// Len returns the number of answers in the set.
func (s *Set) Len() int {
	return len(s.order)
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	c := NewSet()
	for _, id := range s.order {
		c.SetContent(id, s.content[id])
	}
	return c
}

// Records serializes the set. Empty answers are included.
func (s *Set) Records() []Record {
	records := make([]Record, len(s.order))
	for idx, id := range s.order {
		records[idx] = Record{FieldID: id, Content: s.content[id]}
	}
	return records
}

func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Records())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	*s = *FromRecords(records)
	return nil
}

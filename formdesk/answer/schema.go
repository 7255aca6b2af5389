package answer

import (
	"fmt"
	"strings"

	"github.com/G-Node/formdesk/formdesk/form"
)

// RequiredMessage is reported for a required field without an answer.
const RequiredMessage = "This field is required"

// Errors maps field ids to the validation message of the field.
type Errors map[int64]string

// Schema is the per field rule set derived from the fields of a form.
type Schema struct {
	fields []form.Field
	index  map[int64]int
}

// BuildSchema derives a schema from the fields. It fails on the first field
// with an unknown type.
func BuildSchema(fields []form.Field) (*Schema, error) {
	s := &Schema{fields: make([]form.Field, len(fields)), index: make(map[int64]int, len(fields))}
	for idx, f := range fields {
		if _, err := form.KindOf(f.Type); err != nil {
			return nil, fmt.Errorf("field %d: %w", f.ID, err)
		}
		s.fields[idx] = f
		s.index[f.ID] = idx
	}
	return s, nil
}

// Fields returns the fields of the schema.
func (s *Schema) Fields() []form.Field {
	fields := make([]form.Field, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// Field returns the field with the given id.
func (s *Schema) Field(id int64) (form.Field, bool) {
	idx, ok := s.index[id]
	if !ok {
		return form.Field{}, false
	}
	return s.fields[idx], true
}

// Check validates the content for a single field and returns the message
// for it, or "" when the content is acceptable. Content consisting only of
// whitespace counts as empty.
func (s *Schema) Check(fieldID int64, content string) string {
	f, ok := s.Field(fieldID)
	if !ok {
		return "Unknown field"
	}
	if strings.TrimSpace(content) == "" {
		if f.Required {
			return RequiredMessage
		}
		return ""
	}
	// the kind was checked when the schema was built
	msg, _ := f.CheckContent(content)
	return msg
}

// Validate checks every field against the set and reports all failures.
// Answers for fields outside the schema are reported as well.
func (s *Schema) Validate(set *Set) Errors {
	errs := make(Errors)
	for _, f := range s.fields {
		content, _ := set.Content(f.ID)
		if msg := s.Check(f.ID, content); msg != "" {
			errs[f.ID] = msg
		}
	}
	for _, r := range set.Records() {
		if _, ok := s.index[r.FieldID]; !ok {
			errs[r.FieldID] = "Unknown field"
		}
	}
	return errs
}

// Default returns the empty answer set for the schema.
func (s *Schema) Default() *Set {
	return Default(s.fields)
}

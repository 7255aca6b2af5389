package layout

import (
	"fmt"
)

// DanglingFieldReferenceError is returned when a group references a field
// the form does not have.
type DanglingFieldReferenceError struct {
	GroupID string
	FieldID int64
}

func (e *DanglingFieldReferenceError) Error() string {
	return fmt.Sprintf("group %q references unknown field %d", e.GroupID, e.FieldID)
}

// DuplicateFieldReferenceError is returned when a field appears more than
// once in a layout.
type DuplicateFieldReferenceError struct {
	FieldID int64
	Groups  []string
}

func (e *DuplicateFieldReferenceError) Error() string {
	return fmt.Sprintf("field %d is referenced more than once (groups %q)", e.FieldID, e.Groups)
}

// Validate checks the layout against the ids of the fields of its form:
// there is at least one group, group ids are unique and non-empty, display
// settings are usable, every field id is known and no field belongs to more
// than one group.
func (l Layout) Validate(fieldIDs []int64) error {
	if len(l.Groups) == 0 {
		return &InvalidGroupError{Reason: "a layout needs at least one group"}
	}
	known := make(map[int64]bool, len(fieldIDs))
	for _, id := range fieldIDs {
		known[id] = true
	}
	groupIDs := make(map[string]bool, len(l.Groups))
	holder := make(map[int64]string)
	for _, g := range l.Groups {
		if g.ID == "" {
			return &InvalidGroupError{Reason: "group id must not be empty"}
		}
		if groupIDs[g.ID] {
			return &InvalidGroupError{GroupID: g.ID, Reason: "duplicate group id"}
		}
		groupIDs[g.ID] = true
		if err := checkGroupSettings(g.ID, g.Columns, g.Spacing); err != nil {
			return err
		}
		for _, id := range g.FieldIDs {
			if !known[id] {
				return &DanglingFieldReferenceError{GroupID: g.ID, FieldID: id}
			}
			if prev, ok := holder[id]; ok {
				return &DuplicateFieldReferenceError{FieldID: id, Groups: []string{prev, g.ID}}
			}
			holder[id] = g.ID
		}
	}
	return nil
}

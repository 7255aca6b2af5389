package form

import (
	"fmt"
	"strings"
)

// FieldType defines the kind of a form field. It decides which constraint
// attributes are meaningful and how answer content is encoded.
type FieldType string

const (
	Text           FieldType = "text"
	Number         FieldType = "number"
	Date           FieldType = "date"
	Phone          FieldType = "phone"
	Password       FieldType = "password"
	TextArea       FieldType = "textarea"
	Select         FieldType = "select"
	MultipleChoice FieldType = "multiple_choice"
	Boolean        FieldType = "boolean"
	File           FieldType = "file"
)

// FieldTypes lists every supported FieldType in declaration order.
var FieldTypes = []FieldType{Text, Number, Date, Phone, Password, TextArea, Select, MultipleChoice, Boolean, File}

// Control names the input control a renderer uses for a field.
type Control string

const (
	InputControl    Control = "input"
	TextAreaControl Control = "textarea"
	SelectControl   Control = "select"
	CheckboxGroup   Control = "checkbox-group"
	FileControl     Control = "file"
)

// Encoding describes how the answer content string of a field is formed.
type Encoding string

const (
	// PlainEncoding is free text as typed.
	PlainEncoding Encoding = "plain"
	// ChoiceEncoding is a single option value.
	ChoiceEncoding Encoding = "choice"
	// CommaListEncoding joins the selected option values with commas.
	CommaListEncoding Encoding = "comma-list"
	// FileRefEncoding is an opaque reference handed out by file storage.
	FileRefEncoding Encoding = "file-ref"
)

// Presentation is the rendering contract for a field type.
type Presentation struct {
	Control  Control  `json:"control"`
	Encoding Encoding `json:"encoding"`
	// InputType is the HTML input type attribute for InputControl and
	// FileControl fields.
	InputType string `json:"inputType,omitempty"`
}

// UnknownFieldTypeError is returned for a type outside the FieldType enum.
type UnknownFieldTypeError struct {
	Type FieldType
}

func (e *UnknownFieldTypeError) Error() string {
	return fmt.Sprintf("unknown field type %q", string(e.Type))
}

// ParseFieldType returns the FieldType named by s. Case and surrounding
// whitespace are ignored.
func ParseFieldType(s string) (FieldType, error) {
	ft := FieldType(strings.ToLower(strings.TrimSpace(s)))
	if _, err := KindOf(ft); err != nil {
		return "", err
	}
	return ft, nil
}

// Kind holds the behaviour attached to one FieldType. The set of kinds is
// closed: only this package can implement it, and registering a kind
// requires every method below.
type Kind interface {
	Type() FieldType
	Presentation() Presentation
	// attributes lists the constraint attributes that apply to the kind.
	attributes() []string
	checkConstraints(c Constraints) []error
	// checkContent validates non-empty answer content and returns a user
	// facing message, or "" when the content is acceptable.
	checkContent(f Field, content string) string
}

var kinds = map[FieldType]Kind{
	Text:           textKind{Text, "text"},
	Phone:          textKind{Phone, "tel"},
	Password:       textKind{Password, "password"},
	TextArea:       textKind{TextArea, ""},
	Number:         numberKind{},
	Date:           dateKind{},
	Select:         choiceKind{Select},
	MultipleChoice: choiceKind{MultipleChoice},
	Boolean:        booleanKind{},
	File:           fileKind{},
}

// KindOf returns the Kind registered for t.
func KindOf(t FieldType) (Kind, error) {
	k, ok := kinds[t]
	if !ok {
		return nil, &UnknownFieldTypeError{Type: t}
	}
	return k, nil
}

// PresentationFor maps a field type to its control and content encoding.
// It never falls back to a default control.
func PresentationFor(t FieldType) (Presentation, error) {
	k, err := KindOf(t)
	if err != nil {
		return Presentation{}, err
	}
	return k.Presentation(), nil
}

// Choice is one selectable option of a choice field.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var booleanChoices = []Choice{{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}}

// Choices returns the options a renderer offers for the field. Fields that
// are not choice based have none.
func Choices(f Field) []Choice {
	switch f.Type {
	case Boolean:
		c := make([]Choice, len(booleanChoices))
		copy(c, booleanChoices)
		return c
	case Select, MultipleChoice:
		c := make([]Choice, 0, len(f.SelectOptions))
		for idx, opt := range f.SelectOptions {
			label := opt
			if len(f.OptionLabels) == len(f.SelectOptions) {
				label = f.OptionLabels[idx]
			}
			c = append(c, Choice{Value: opt, Label: label})
		}
		return c
	}
	return nil
}

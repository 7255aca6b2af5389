package form

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// DateLayout is the layout of date constraints and date answer content.
const DateLayout = "2006-01-02"

// Constraints is the type specific constraint bag of a field. Unset values
// are nil (or empty) and impose nothing.
type Constraints struct {
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	MinValue *float64 `json:"minValue,omitempty"`
	MaxValue *float64 `json:"maxValue,omitempty"`
	Step     *float64 `json:"step,omitempty"`

	MinDate string `json:"minDate,omitempty"`
	MaxDate string `json:"maxDate,omitempty"`

	SelectOptions []string `json:"selectOptions,omitempty"`

	MaxFileSize      *int64   `json:"maxFileSize,omitempty"`
	AllowedFileTypes []string `json:"allowedFileTypes,omitempty"`
}

// set returns the names of the attributes that carry a value.
func (c Constraints) set() []string {
	var names []string
	add := func(ok bool, name string) {
		if ok {
			names = append(names, name)
		}
	}
	add(c.MinLength != nil, "minLength")
	add(c.MaxLength != nil, "maxLength")
	add(c.Pattern != "", "pattern")
	add(c.MinValue != nil, "minValue")
	add(c.MaxValue != nil, "maxValue")
	add(c.Step != nil, "step")
	add(c.MinDate != "", "minDate")
	add(c.MaxDate != "", "maxDate")
	add(c.SelectOptions != nil, "selectOptions")
	add(c.MaxFileSize != nil, "maxFileSize")
	add(len(c.AllowedFileTypes) > 0, "allowedFileTypes")
	return names
}

// Spec holds everything needed to define a field except its identity.
type Spec struct {
	// Label is the display name of the field.
	Label string `json:"label"`
	// Optional help text shown with the control.
	Description string    `json:"description,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Tooltip     string    `json:"tooltip,omitempty"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	// Order is a rendering hint used by the default layout. Once a layout is
	// saved, the layout groups decide the position of the field.
	Order int `json:"order"`
	Constraints
}

// Field is a field definition owned by a form.
type Field struct {
	ID     int64 `json:"id"`
	FormID int64 `json:"formId"`
	Spec
	// OptionLabels are localized display labels for SelectOptions, index
	// aligned. Option values never change with the locale.
	OptionLabels []string `json:"optionLabels,omitempty"`
}

// ConstraintError reports every inconsistency found in a field spec.
type ConstraintError struct {
	Label string
	Err   *multierror.Error
}

// NewConstraintError returns a ConstraintError for the given problems.
func NewConstraintError(label string, problems ...error) *ConstraintError {
	merr := multierror.Append(nil, problems...)
	merr.ErrorFormat = inlineFormat
	return &ConstraintError{Label: label, Err: merr}
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Label, e.Err.Error())
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// Problems lists the individual inconsistencies.
func (e *ConstraintError) Problems() []string {
	msgs := make([]string, len(e.Err.Errors))
	for idx, err := range e.Err.Errors {
		msgs[idx] = err.Error()
	}
	return msgs
}

func inlineFormat(errs []error) string {
	msgs := make([]string, len(errs))
	for idx, err := range errs {
		msgs[idx] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks that the spec names a known type and that its
// constraints apply to that type and are consistent with each other. An
// unknown type is reported as *UnknownFieldTypeError, anything else as a
// *ConstraintError carrying all problems at once.
func (s Spec) Validate() error {
	kind, err := KindOf(s.Type)
	if err != nil {
		return err
	}

	var result *multierror.Error
	if strings.TrimSpace(s.Label) == "" {
		result = multierror.Append(result, fmt.Errorf("label must not be empty"))
	}

	allowed := make(map[string]bool)
	for _, name := range kind.attributes() {
		allowed[name] = true
	}
	for _, name := range s.Constraints.set() {
		if !allowed[name] {
			result = multierror.Append(result, fmt.Errorf("%s does not apply to %s fields", name, s.Type))
		}
	}
	result = multierror.Append(result, kind.checkConstraints(s.Constraints)...)

	if result.ErrorOrNil() == nil {
		return nil
	}
	result.ErrorFormat = inlineFormat
	return &ConstraintError{Label: s.Label, Err: result}
}

func checkLengthBounds(c Constraints) []error {
	var errs []error
	if c.MinLength != nil && *c.MinLength < 0 {
		errs = append(errs, fmt.Errorf("minLength must not be negative"))
	}
	if c.MaxLength != nil && *c.MaxLength < 0 {
		errs = append(errs, fmt.Errorf("maxLength must not be negative"))
	}
	if c.MinLength != nil && c.MaxLength != nil && *c.MinLength > *c.MaxLength {
		errs = append(errs, fmt.Errorf("minLength %d is greater than maxLength %d", *c.MinLength, *c.MaxLength))
	}
	if c.Pattern != "" {
		if _, err := compilePattern(c.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("pattern is not a valid regular expression: %v", err))
		}
	}
	return errs
}

// compilePattern anchors the expression so that it has to match the whole
// content, like the HTML pattern attribute.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")$")
}

// ParseOptions parses newline separated option text into a list. Entries
// are trimmed and blank entries dropped, so CRLF line endings are accepted.
func ParseOptions(text string) []string {
	var opts []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			opts = append(opts, line)
		}
	}
	return opts
}

// JoinOptions is the persisted form of an option list.
func JoinOptions(opts []string) string {
	return strings.Join(opts, "\n")
}

// Localization overrides the display texts of a field for one locale.
type Localization struct {
	Locale        string   `json:"locale"`
	Label         string   `json:"label,omitempty"`
	Description   string   `json:"description,omitempty"`
	Placeholder   string   `json:"placeholder,omitempty"`
	Tooltip       string   `json:"tooltip,omitempty"`
	SelectOptions []string `json:"selectOptions,omitempty"`
}

// Localize returns a copy of the field with every text set in loc applied.
// Localized options become option labels, and only when their count matches
// the option list.
func (f Field) Localize(loc Localization) Field {
	if loc.Label != "" {
		f.Label = loc.Label
	}
	if loc.Description != "" {
		f.Description = loc.Description
	}
	if loc.Placeholder != "" {
		f.Placeholder = loc.Placeholder
	}
	if loc.Tooltip != "" {
		f.Tooltip = loc.Tooltip
	}
	if len(loc.SelectOptions) > 0 && len(loc.SelectOptions) == len(f.SelectOptions) {
		f.OptionLabels = append([]string(nil), loc.SelectOptions...)
	}
	return f
}

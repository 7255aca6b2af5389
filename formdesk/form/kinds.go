package form

import (
	"fmt"
	"math"
	"mime"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type textKind struct {
	ft        FieldType
	inputType string
}

func (k textKind) Type() FieldType { return k.ft }

func (k textKind) Presentation() Presentation {
	if k.ft == TextArea {
		return Presentation{Control: TextAreaControl, Encoding: PlainEncoding}
	}
	return Presentation{Control: InputControl, Encoding: PlainEncoding, InputType: k.inputType}
}

func (textKind) attributes() []string { return []string{"minLength", "maxLength", "pattern"} }

func (textKind) checkConstraints(c Constraints) []error { return checkLengthBounds(c) }

func (textKind) checkContent(f Field, content string) string {
	n := utf8.RuneCountInString(content)
	if f.MinLength != nil && n < *f.MinLength {
		return fmt.Sprintf("Must be at least %d characters", *f.MinLength)
	}
	if f.MaxLength != nil && n > *f.MaxLength {
		return fmt.Sprintf("Must be at most %d characters", *f.MaxLength)
	}
	if f.Pattern != "" {
		re, err := compilePattern(f.Pattern)
		if err == nil && !re.MatchString(content) {
			return "Does not match the required format"
		}
	}
	return ""
}

type numberKind struct{}

func (numberKind) Type() FieldType { return Number }

func (numberKind) Presentation() Presentation {
	return Presentation{Control: InputControl, Encoding: PlainEncoding, InputType: "number"}
}

func (numberKind) attributes() []string { return []string{"minValue", "maxValue", "step"} }

func (numberKind) checkConstraints(c Constraints) []error {
	var errs []error
	if c.MinValue != nil && c.MaxValue != nil && *c.MinValue > *c.MaxValue {
		errs = append(errs, fmt.Errorf("minValue %g is greater than maxValue %g", *c.MinValue, *c.MaxValue))
	}
	if c.Step != nil && *c.Step <= 0 {
		errs = append(errs, fmt.Errorf("step must be positive"))
	}
	return errs
}

func (numberKind) checkContent(f Field, content string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "Must be a number"
	}
	if f.MinValue != nil && v < *f.MinValue {
		return fmt.Sprintf("Must be at least %g", *f.MinValue)
	}
	if f.MaxValue != nil && v > *f.MaxValue {
		return fmt.Sprintf("Must be at most %g", *f.MaxValue)
	}
	if f.Step != nil && *f.Step > 0 {
		base := 0.0
		if f.MinValue != nil {
			base = *f.MinValue
		}
		steps := (v - base) / *f.Step
		if math.Abs(steps-math.Round(steps)) > 1e-9 {
			return fmt.Sprintf("Must be a multiple of %g", *f.Step)
		}
	}
	return ""
}

type dateKind struct{}

func (dateKind) Type() FieldType { return Date }

func (dateKind) Presentation() Presentation {
	return Presentation{Control: InputControl, Encoding: PlainEncoding, InputType: "date"}
}

func (dateKind) attributes() []string { return []string{"minDate", "maxDate"} }

func (dateKind) checkConstraints(c Constraints) []error {
	var errs []error
	min, minErr := ParseDate(c.MinDate)
	if c.MinDate != "" && minErr != nil {
		errs = append(errs, fmt.Errorf("minDate %q is not a date", c.MinDate))
	}
	max, maxErr := ParseDate(c.MaxDate)
	if c.MaxDate != "" && maxErr != nil {
		errs = append(errs, fmt.Errorf("maxDate %q is not a date", c.MaxDate))
	}
	if c.MinDate != "" && c.MaxDate != "" && minErr == nil && maxErr == nil && min.After(max) {
		errs = append(errs, fmt.Errorf("minDate %s is after maxDate %s", c.MinDate, c.MaxDate))
	}
	return errs
}

func (dateKind) checkContent(f Field, content string) string {
	d, err := ParseDate(content)
	if err != nil {
		return "Must be a valid date"
	}
	if min, err := ParseDate(f.MinDate); err == nil && d.Before(min) {
		return fmt.Sprintf("Must be on or after %s", f.MinDate)
	}
	if max, err := ParseDate(f.MaxDate); err == nil && d.After(max) {
		return fmt.Sprintf("Must be on or before %s", f.MaxDate)
	}
	return ""
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp
// and returns the calendar day in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

type choiceKind struct {
	ft FieldType
}

func (k choiceKind) Type() FieldType { return k.ft }

func (k choiceKind) Presentation() Presentation {
	if k.ft == MultipleChoice {
		return Presentation{Control: CheckboxGroup, Encoding: CommaListEncoding}
	}
	return Presentation{Control: SelectControl, Encoding: ChoiceEncoding}
}

func (choiceKind) attributes() []string { return []string{"selectOptions"} }

func (k choiceKind) checkConstraints(c Constraints) []error {
	if c.SelectOptions == nil {
		return nil
	}
	var errs []error
	opts := 0
	for _, opt := range c.SelectOptions {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		opts++
		if k.ft == MultipleChoice && strings.Contains(opt, ",") {
			errs = append(errs, fmt.Errorf("option %q must not contain a comma", opt))
		}
	}
	if opts == 0 {
		errs = append(errs, fmt.Errorf("%s fields need at least one non-blank option", k.ft))
	}
	return errs
}

func (k choiceKind) checkContent(f Field, content string) string {
	if len(f.SelectOptions) == 0 {
		return ""
	}
	if k.ft == Select {
		if !containsString(f.SelectOptions, content) {
			return "Must be one of the listed options"
		}
		return ""
	}
	for _, item := range SplitSelection(content) {
		if !containsString(f.SelectOptions, item) {
			return fmt.Sprintf("%q is not one of the listed options", item)
		}
	}
	return ""
}

// SplitSelection splits comma list content into its trimmed, non-blank
// items.
func SplitSelection(content string) []string {
	var items []string
	for _, item := range strings.Split(content, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

type booleanKind struct{}

func (booleanKind) Type() FieldType { return Boolean }

func (booleanKind) Presentation() Presentation {
	return Presentation{Control: SelectControl, Encoding: ChoiceEncoding}
}

func (booleanKind) attributes() []string { return nil }

func (booleanKind) checkConstraints(Constraints) []error { return nil }

func (booleanKind) checkContent(_ Field, content string) string {
	if content != "true" && content != "false" {
		return "Must be true or false"
	}
	return ""
}

type fileKind struct{}

func (fileKind) Type() FieldType { return File }

func (fileKind) Presentation() Presentation {
	return Presentation{Control: FileControl, Encoding: FileRefEncoding, InputType: "file"}
}

func (fileKind) attributes() []string { return []string{"maxFileSize", "allowedFileTypes"} }

func (fileKind) checkConstraints(c Constraints) []error {
	var errs []error
	if c.MaxFileSize != nil && *c.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("maxFileSize must be positive"))
	}
	for _, ft := range c.AllowedFileTypes {
		if strings.TrimSpace(ft) == "" {
			errs = append(errs, fmt.Errorf("allowedFileTypes must not contain blank entries"))
			break
		}
	}
	return errs
}

// File content is a reference owned by file storage.
func (fileKind) checkContent(Field, string) string { return "" }

// CheckContent validates non-empty answer content against the constraints
// of the field. It returns a user facing message, or "" when the content is
// acceptable.
func (f Field) CheckContent(content string) (string, error) {
	k, err := KindOf(f.Type)
	if err != nil {
		return "", err
	}
	return k.checkContent(f, content), nil
}

// CheckUpload checks a file about to be uploaded for a file field against
// its maxFileSize and allowedFileTypes. Entries of allowedFileTypes are
// either extensions (".pdf") or MIME patterns ("application/pdf",
// "image/*"). The file itself is never read.
func CheckUpload(f Field, filename string, size int64) string {
	if f.MaxFileSize != nil && size > *f.MaxFileSize {
		return fmt.Sprintf("File is larger than %d bytes", *f.MaxFileSize)
	}
	if len(f.AllowedFileTypes) == 0 {
		return ""
	}
	ext := strings.ToLower(path.Ext(filename))
	mtype, _, _ := mime.ParseMediaType(mime.TypeByExtension(ext))
	for _, allowed := range f.AllowedFileTypes {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		switch {
		case strings.HasPrefix(allowed, "."):
			if allowed == ext {
				return ""
			}
		case strings.HasSuffix(allowed, "/*"):
			if mtype != "" && strings.HasPrefix(mtype, strings.TrimSuffix(allowed, "*")) {
				return ""
			}
		case allowed == mtype:
			return ""
		}
	}
	return "File type is not allowed"
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

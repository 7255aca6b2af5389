// Package view turns a form, its layout and an answer set into a render
// plan: the groups to draw, the grid span of their fields and the control
// to use for each field.
package view

import (
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/G-Node/formdesk/formdesk/answer"
	"github.com/G-Node/formdesk/formdesk/form"
	"github.com/G-Node/formdesk/formdesk/layout"
)

const fieldNamePrefix = "field-"

// Option is a choice of a choice control.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Field is a field ready to be rendered.
type Field struct {
	form.Field
	// Name is the HTML form name of the control.
	Name         string            `json:"name"`
	Presentation form.Presentation `json:"presentation"`
	Options      []Option          `json:"options,omitempty"`
	Content      string            `json:"content"`
	Error        string            `json:"error,omitempty"`
	// Accept lists the allowed file types of a file field for the accept
	// attribute of the control.
	Accept string `json:"accept,omitempty"`
}

// Group is a layout group with its fields resolved.
type Group struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Columns int     `json:"columns"`
	Spacing int     `json:"spacing"`
	Span    string  `json:"span"`
	Fields  []Field `json:"fields"`
}

// Plan is everything a renderer needs to draw a form.
type Plan struct {
	Groups []Group `json:"groups"`
	// Unassigned lists fields that are not part of any group. They are not
	// rendered.
	Unassigned []int64 `json:"unassigned,omitempty"`
}

// FieldName returns the HTML form name for a field id.
func FieldName(id int64) string {
	return fieldNamePrefix + strconv.FormatInt(id, 10)
}

// Build resolves the layout against the fields. The layout has to be valid
// for the fields and every field type must be known. set and errs may be
// nil.
func Build(fields []form.Field, l layout.Layout, set *answer.Set, errs answer.Errors) (*Plan, error) {
	byID := make(map[int64]form.Field, len(fields))
	ids := make([]int64, len(fields))
	for idx, f := range fields {
		byID[f.ID] = f
		ids[idx] = f.ID
	}
	if err := l.Validate(ids); err != nil {
		return nil, err
	}
	if set == nil {
		set = answer.NewSet()
	}

	plan := &Plan{Groups: make([]Group, len(l.Groups)), Unassigned: l.Unassigned(ids)}
	for gidx, g := range l.Groups {
		group := Group{
			ID:      g.ID,
			Title:   g.Title,
			Columns: g.Columns,
			Spacing: g.Spacing,
			Span:    layout.ColumnSpan(g.Columns),
			Fields:  make([]Field, 0, len(g.FieldIDs)),
		}
		for _, id := range g.FieldIDs {
			fv, err := buildField(byID[id], set, errs)
			if err != nil {
				return nil, err
			}
			group.Fields = append(group.Fields, fv)
		}
		plan.Groups[gidx] = group
	}
	return plan, nil
}

func buildField(f form.Field, set *answer.Set, errs answer.Errors) (Field, error) {
	p, err := form.PresentationFor(f.Type)
	if err != nil {
		return Field{}, fmt.Errorf("field %d: %w", f.ID, err)
	}
	content, _ := set.Content(f.ID)
	fv := Field{
		Field:        f,
		Name:         FieldName(f.ID),
		Presentation: p,
		Content:      content,
		Error:        errs[f.ID],
	}
	if p.Control == form.FileControl {
		fv.Accept = strings.Join(f.AllowedFileTypes, ",")
	}
	selected := map[string]bool{content: true}
	if p.Encoding == form.CommaListEncoding {
		selected = make(map[string]bool)
		for _, item := range form.SplitSelection(content) {
			selected[item] = true
		}
	}
	for _, c := range form.Choices(f) {
		fv.Options = append(fv.Options, Option{Value: c.Value, Label: c.Label, Selected: selected[c.Value]})
	}
	return fv, nil
}

// Bind reads the answers for the fields from posted HTML form values.
// Multiple choice fields collect every checked value into a comma list.
// Every field gets an answer, empty when nothing was posted.
func Bind(fields []form.Field, values url.Values) *answer.Set {
	set := answer.Default(fields)
	for _, f := range fields {
		name := FieldName(f.ID)
		if f.Type == form.MultipleChoice {
			var items []string
			for _, v := range values[name] {
				items = append(items, form.SplitSelection(v)...)
			}
			set.SetContent(f.ID, strings.Join(items, ","))
			continue
		}
		set.SetContent(f.ID, values.Get(name))
	}
	return set
}

// BindUploads sets the answers of file fields from the files of a
// multipart post. The answer is the file name; the file itself is left to
// file storage. Files that break the size or type constraints of their
// field are reported.
func BindUploads(fields []form.Field, files map[string][]*multipart.FileHeader, set *answer.Set) answer.Errors {
	errs := make(answer.Errors)
	for _, f := range fields {
		if f.Type != form.File {
			continue
		}
		headers := files[FieldName(f.ID)]
		if len(headers) == 0 || headers[0].Filename == "" {
			continue
		}
		h := headers[0]
		set.SetContent(f.ID, h.Filename)
		if msg := form.CheckUpload(f, h.Filename, h.Size); msg != "" {
			errs[f.ID] = msg
		}
	}
	return errs
}

package view

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/url"
	"testing"

	"github.com/G-Node/formdesk/formdesk/answer"
	"github.com/G-Node/formdesk/formdesk/form"
	"github.com/G-Node/formdesk/formdesk/layout"
)

func testFields() []form.Field {
	return []form.Field{
		{ID: 1, Spec: form.Spec{Label: "Name", Type: form.Text, Order: 1, Required: true}},
		{ID: 2, Spec: form.Spec{Label: "Priority", Type: form.Select, Order: 2, Constraints: form.Constraints{SelectOptions: []string{"Low", "High"}}}},
		{ID: 3, Spec: form.Spec{Label: "Tags", Type: form.MultipleChoice, Order: 3, Constraints: form.Constraints{SelectOptions: []string{"a", "b", "c"}}}},
		{ID: 4, Spec: form.Spec{Label: "Urgent", Type: form.Boolean, Order: 4}},
	}
}

func TestBuildDefault(t *testing.T) {
	fields := testFields()
	plan, err := Build(fields, layout.Default(fields), nil, nil)
	if err != nil {
		t.Fatalf("Failed to build plan: %s", err.Error())
	}
	if len(plan.Groups) != 1 || len(plan.Groups[0].Fields) != 4 {
		t.Fatalf("Unexpected plan: %+v", plan)
	}
	g := plan.Groups[0]
	if g.Span != layout.SpanFull || g.Title != "Form Fields" {
		t.Fatalf("Unexpected default group: %+v", g)
	}
	if f := g.Fields[3]; len(f.Options) != 2 || f.Options[0].Value != "true" {
		t.Fatalf("Boolean field without fixed options: %+v", f)
	}
	if f := g.Fields[0]; f.Name != "field-1" || f.Presentation.InputType != "text" {
		t.Fatalf("Unexpected text field: %+v", f)
	}
}

func TestBuildWithAnswers(t *testing.T) {
	fields := testFields()
	l := layout.Layout{Groups: []layout.Group{
		{ID: "a", Title: "A", Columns: 2, Spacing: 4, FieldIDs: []int64{3, 1}},
		{ID: "b", Title: "B", Columns: 3, Spacing: 2, FieldIDs: []int64{2}},
	}}
	set := answer.NewSet()
	set.SetContent(2, "High")
	set.Toggle(3, "c")
	set.Toggle(3, "a")
	errs := answer.Errors{1: answer.RequiredMessage}

	plan, err := Build(fields, l, set, errs)
	if err != nil {
		t.Fatalf("Failed to build plan: %s", err.Error())
	}
	if plan.Groups[0].Span != layout.SpanHalf || plan.Groups[1].Span != layout.SpanThird {
		t.Fatalf("Unexpected spans: %q %q", plan.Groups[0].Span, plan.Groups[1].Span)
	}
	tags := plan.Groups[0].Fields[0]
	if !tags.Options[0].Selected || tags.Options[1].Selected || !tags.Options[2].Selected {
		t.Fatalf("Unexpected multiple choice selection: %+v", tags.Options)
	}
	if plan.Groups[0].Fields[1].Error != answer.RequiredMessage {
		t.Fatal("Field error not attached")
	}
	if prio := plan.Groups[1].Fields[0]; !prio.Options[1].Selected || prio.Options[0].Selected {
		t.Fatalf("Unexpected select state: %+v", prio.Options)
	}
	if len(plan.Unassigned) != 1 || plan.Unassigned[0] != 4 {
		t.Fatalf("Unexpected unassigned fields: %v", plan.Unassigned)
	}
}

func TestBuildRejects(t *testing.T) {
	fields := testFields()
	dangling := layout.Layout{Groups: []layout.Group{{ID: "a", Title: "A", Columns: 1, FieldIDs: []int64{1, 9}}}}
	var de *layout.DanglingFieldReferenceError
	if _, err := Build(fields, dangling, nil, nil); !errors.As(err, &de) {
		t.Fatalf("Expected dangling reference error, got %v", err)
	}

	fields = append(fields, form.Field{ID: 5, Spec: form.Spec{Label: "Rows", Type: "array"}})
	var unknown *form.UnknownFieldTypeError
	if _, err := Build(fields, layout.Default(fields), nil, nil); !errors.As(err, &unknown) {
		t.Fatalf("Expected unknown field type error, got %v", err)
	}
}

func TestBind(t *testing.T) {
	values := url.Values{
		"field-1": {"Ada"},
		"field-3": {"a", "c"},
		"field-9": {"ignored"},
	}
	set := Bind(testFields(), values)
	if set.Len() != 4 {
		t.Fatalf("Expected an answer per field, got %d", set.Len())
	}
	if c, _ := set.Content(1); c != "Ada" {
		t.Fatalf("Unexpected text answer: %q", c)
	}
	if c, _ := set.Content(3); c != "a,c" {
		t.Fatalf("Unexpected multiple choice answer: %q", c)
	}
	if c, ok := set.Content(2); !ok || c != "" {
		t.Fatalf("Unposted field should be empty: %q %v", c, ok)
	}
}

func TestBindUploads(t *testing.T) {
	maxSize := int64(8)
	fields := []form.Field{
		{ID: 1, Spec: form.Spec{Label: "Name", Type: form.Text}},
		{ID: 2, Spec: form.Spec{Label: "Scan", Type: form.File, Constraints: form.Constraints{AllowedFileTypes: []string{"image/*"}}}},
		{ID: 3, Spec: form.Spec{Label: "Notes", Type: form.File, Constraints: form.Constraints{MaxFileSize: &maxSize}}},
		{ID: 4, Spec: form.Spec{Label: "Extra", Type: form.File}},
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile(FieldName(2), "scan.png")
	fw.Write([]byte("png"))
	fw, _ = mw.CreateFormFile(FieldName(3), "notes.txt")
	fw.Write([]byte("more than eight bytes"))
	mw.Close()
	mf, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("Failed to read multipart form: %s", err.Error())
	}
	defer mf.RemoveAll()

	set := answer.Default(fields)
	errs := BindUploads(fields, mf.File, set)
	if c, _ := set.Content(2); c != "scan.png" {
		t.Fatalf("Unexpected file answer %q", c)
	}
	if _, ok := errs[2]; ok {
		t.Fatalf("Allowed image rejected: %v", errs)
	}
	if c, _ := set.Content(3); c != "notes.txt" || errs[3] == "" {
		t.Fatalf("Oversized file not reported: %q %v", c, errs)
	}
	if c, _ := set.Content(4); c != "" || len(errs) != 1 {
		t.Fatalf("Missing upload changed the answers: %q %v", c, errs)
	}

	plan, err := Build(fields, layout.Default(fields), set, errs)
	if err != nil {
		t.Fatalf("Failed to build plan: %s", err.Error())
	}
	if accept := plan.Groups[0].Fields[1].Accept; accept != "image/*" {
		t.Fatalf("Unexpected accept list %q", accept)
	}
	if accept := plan.Groups[0].Fields[0].Accept; accept != "" {
		t.Fatalf("Accept set on a text field: %q", accept)
	}
}

package layout

import (
	"errors"
	"reflect"
	"testing"

	"github.com/G-Node/formdesk/formdesk/form"
)

func makeFields(n int) []form.Field {
	fields := make([]form.Field, n)
	for idx := range fields {
		fields[idx] = form.Field{ID: int64(idx + 1), Spec: form.Spec{Label: "f", Type: form.Text, Order: idx + 1}}
	}
	return fields
}

func ids(from, to int64) []int64 {
	var l []int64
	for id := from; id <= to; id++ {
		l = append(l, id)
	}
	return l
}

func threeGroups() Layout {
	return Layout{Groups: []Group{
		{ID: "a", Title: "A", Columns: 2, Spacing: 4, FieldIDs: []int64{1, 2}},
		{ID: "b", Title: "B", Columns: 1, Spacing: 4, FieldIDs: []int64{3}},
		{ID: "c", Title: "C", Columns: 3, Spacing: 2, FieldIDs: []int64{4, 5, 6}},
	}}
}

func checkExclusive(t *testing.T, l Layout) {
	seen := make(map[int64]string)
	for _, g := range l.Groups {
		for _, id := range g.FieldIDs {
			if prev, ok := seen[id]; ok {
				t.Fatalf("Field %d is in groups %q and %q", id, prev, g.ID)
			}
			seen[id] = g.ID
		}
	}
}

func TestDefault(t *testing.T) {
	fields := makeFields(21)
	// shuffle the input; order decides
	fields[0], fields[20] = fields[20], fields[0]
	l := Default(fields)
	if len(l.Groups) != 1 {
		t.Fatalf("Default layout has %d groups", len(l.Groups))
	}
	g := l.Groups[0]
	if g.ID != "default" || g.Title != "Form Fields" || g.Columns != 1 || g.Spacing != 4 {
		t.Fatalf("Unexpected default group: %+v", g)
	}
	if !reflect.DeepEqual(g.FieldIDs, ids(1, 21)) {
		t.Fatalf("Unexpected default field order: %v", g.FieldIDs)
	}
	if err := l.Validate(ids(1, 21)); err != nil {
		t.Fatalf("Default layout is invalid: %s", err.Error())
	}
}

func TestDefaultOrderTies(t *testing.T) {
	fields := []form.Field{
		{ID: 9, Spec: form.Spec{Order: 1}},
		{ID: 4, Spec: form.Spec{Order: 1}},
		{ID: 2, Spec: form.Spec{Order: 0}},
	}
	if got := Default(fields).Groups[0].FieldIDs; !reflect.DeepEqual(got, []int64{2, 4, 9}) {
		t.Fatalf("Unexpected order for tied fields: %v", got)
	}
}

func TestColumnSpan(t *testing.T) {
	spans := make(map[string]int)
	for cols := 1; cols <= 4; cols++ {
		s := ColumnSpan(cols)
		if s != ColumnSpan(cols) {
			t.Fatalf("ColumnSpan(%d) is not stable", cols)
		}
		if prev, ok := spans[s]; ok {
			t.Fatalf("ColumnSpan(%d) and ColumnSpan(%d) share token %q", prev, cols, s)
		}
		spans[s] = cols
	}
	if ColumnSpan(7) != ColumnSpan(2) {
		t.Fatalf("ColumnSpan(7) = %q, expected half width %q", ColumnSpan(7), ColumnSpan(2))
	}
	if ColumnSpan(0) != SpanHalf {
		t.Fatalf("ColumnSpan(0) = %q", ColumnSpan(0))
	}
}

func TestMoveField(t *testing.T) {
	l := threeGroups()
	orig := l.Clone()

	up := l.MoveField(1, Up)
	if !reflect.DeepEqual(up, orig) {
		t.Fatalf("Moving up from the first group changed the layout: %+v", up)
	}
	down := l.MoveField(6, Down)
	if !reflect.DeepEqual(down, orig) {
		t.Fatalf("Moving down from the last group changed the layout: %+v", down)
	}
	if missing := l.MoveField(99, Down); !reflect.DeepEqual(missing, orig) {
		t.Fatalf("Moving an unassigned field changed the layout: %+v", missing)
	}

	moved := l.MoveField(4, Up)
	if !reflect.DeepEqual(moved.Groups[1].FieldIDs, []int64{3, 4}) {
		t.Fatalf("Field not appended to previous group: %v", moved.Groups[1].FieldIDs)
	}
	if !reflect.DeepEqual(moved.Groups[2].FieldIDs, []int64{5, 6}) {
		t.Fatalf("Field not removed from source group: %v", moved.Groups[2].FieldIDs)
	}
	checkExclusive(t, moved)

	moved = moved.MoveField(1, Down)
	if !reflect.DeepEqual(moved.Groups[1].FieldIDs, []int64{3, 4, 1}) {
		t.Fatalf("Field not appended to next group: %v", moved.Groups[1].FieldIDs)
	}
	checkExclusive(t, moved)

	if !reflect.DeepEqual(l, orig) {
		t.Fatal("MoveField modified its input")
	}
}

func TestReorder(t *testing.T) {
	l := threeGroups()
	orig := l.Clone()

	r := l.Reorder("c", 0, 2)
	if !reflect.DeepEqual(r.Groups[2].FieldIDs, []int64{5, 6, 4}) {
		t.Fatalf("Reorder forward: %v", r.Groups[2].FieldIDs)
	}
	r = l.Reorder("c", 2, 0)
	if !reflect.DeepEqual(r.Groups[2].FieldIDs, []int64{6, 4, 5}) {
		t.Fatalf("Reorder backward: %v", r.Groups[2].FieldIDs)
	}

	stale := [][2]int{{-1, 0}, {0, 3}, {3, 0}, {5, 9}}
	for _, idx := range stale {
		if got := l.Reorder("c", idx[0], idx[1]); !reflect.DeepEqual(got, orig) {
			t.Fatalf("Reorder with stale indices %v changed layout: %+v", idx, got)
		}
	}
	if got := l.Reorder("b", 0, 1); !reflect.DeepEqual(got, orig) {
		t.Fatalf("Reorder in short group changed layout: %+v", got)
	}
	if got := l.Reorder("nope", 0, 1); !reflect.DeepEqual(got, orig) {
		t.Fatalf("Reorder in unknown group changed layout: %+v", got)
	}
	if !reflect.DeepEqual(l, orig) {
		t.Fatal("Reorder modified its input")
	}
}

func TestAddGroup(t *testing.T) {
	l := Layout{Groups: []Group{
		{ID: "default", Title: "Form Fields", Columns: 1, Spacing: 4, FieldIDs: []int64{1}},
		{ID: "group-7", Title: "Seven", Columns: 2, Spacing: 4},
		{ID: "group-x", Title: "Odd", Columns: 2, Spacing: 4},
	}}
	added, err := l.AddGroup("", 2, 4)
	if err != nil {
		t.Fatalf("Failed to add group: %s", err.Error())
	}
	if len(added.Groups) != 4 {
		t.Fatalf("Expected 4 groups, got %d", len(added.Groups))
	}
	g := added.Groups[3]
	if g.ID != "group-8" || g.Title != "Group 8" || len(g.FieldIDs) != 0 {
		t.Fatalf("Unexpected new group: %+v", g)
	}
	again, _ := added.AddGroup("Extra", 3, 2)
	if again.Groups[4].ID != "group-9" || again.Groups[4].Title != "Extra" {
		t.Fatalf("Unexpected second group: %+v", again.Groups[4])
	}

	if first, _ := (Layout{}).AddGroup("", 1, 4); first.Groups[0].ID != "group-1" {
		t.Fatalf("First minted id: %q", first.Groups[0].ID)
	}

	var ig *InvalidGroupError
	if _, err := l.AddGroup("x", 0, 4); !errors.As(err, &ig) {
		t.Fatalf("Zero columns accepted: %v", err)
	}
	if _, err := l.AddGroup("x", 2, -1); !errors.As(err, &ig) {
		t.Fatalf("Negative spacing accepted: %v", err)
	}
	if len(l.Groups) != 3 {
		t.Fatal("AddGroup modified its input")
	}
}

func TestUpdateGroup(t *testing.T) {
	l := threeGroups()
	u, err := l.UpdateGroup("b", "Renamed", 4, 8)
	if err != nil {
		t.Fatalf("Failed to update group: %s", err.Error())
	}
	if g := u.Groups[1]; g.Title != "Renamed" || g.Columns != 4 || g.Spacing != 8 || !reflect.DeepEqual(g.FieldIDs, []int64{3}) {
		t.Fatalf("Unexpected updated group: %+v", g)
	}
	if _, err := l.UpdateGroup("b", "x", 0, 4); err == nil {
		t.Fatal("Update with zero columns accepted")
	}
	if l.Groups[1].Title != "B" {
		t.Fatal("UpdateGroup modified its input")
	}
}

func TestDeleteGroup(t *testing.T) {
	l := threeGroups()
	d, err := l.DeleteGroup("b")
	if err != nil {
		t.Fatalf("Failed to delete group: %s", err.Error())
	}
	if len(d.Groups) != 2 || d.Groups[1].ID != "c" {
		t.Fatalf("Unexpected groups after delete: %+v", d.Groups)
	}
	if free := d.Unassigned(ids(1, 6)); !reflect.DeepEqual(free, []int64{3}) {
		t.Fatalf("Fields of deleted group should be unassigned: %v", free)
	}

	single := Default(makeFields(3))
	before := single.Clone()
	after, err := single.DeleteGroup("default")
	var lg *LastGroupError
	if !errors.As(err, &lg) {
		t.Fatalf("Expected LastGroupError, got %v", err)
	}
	if !reflect.DeepEqual(after, before) || !reflect.DeepEqual(single, before) {
		t.Fatal("Failed delete of last group changed the layout")
	}

	if same, err := l.DeleteGroup("zzz"); err != nil || !reflect.DeepEqual(same, l) {
		t.Fatalf("Deleting unknown group: %v %+v", err, same)
	}
}

func TestRemoveAndAppendField(t *testing.T) {
	l := threeGroups()
	r := l.RemoveField(5)
	if !reflect.DeepEqual(r.Groups[2].FieldIDs, []int64{4, 6}) {
		t.Fatalf("Field not removed: %v", r.Groups[2].FieldIDs)
	}
	if again := r.RemoveField(5); !reflect.DeepEqual(again, r) {
		t.Fatal("Removing an absent field changed the layout")
	}
	a := r.AppendField(5)
	if !reflect.DeepEqual(a.Groups[0].FieldIDs, []int64{1, 2, 5}) {
		t.Fatalf("Field not appended to first group: %v", a.Groups[0].FieldIDs)
	}
	if twice := a.AppendField(5); !reflect.DeepEqual(twice, a) {
		t.Fatal("Appending an assigned field changed the layout")
	}
	if !reflect.DeepEqual(l.Groups[2].FieldIDs, []int64{4, 5, 6}) {
		t.Fatal("RemoveField modified its input")
	}
}

func TestValidate(t *testing.T) {
	known := ids(1, 6)
	if err := threeGroups().Validate(known); err != nil {
		t.Fatalf("Valid layout rejected: %s", err.Error())
	}

	dangling := threeGroups()
	dangling.Groups[1].FieldIDs = append(dangling.Groups[1].FieldIDs, 42)
	var de *DanglingFieldReferenceError
	if err := dangling.Validate(known); !errors.As(err, &de) || de.FieldID != 42 || de.GroupID != "b" {
		t.Fatalf("Expected dangling reference to 42 in b, got %v", err)
	}

	dupe := threeGroups()
	dupe.Groups[2].FieldIDs = append(dupe.Groups[2].FieldIDs, 1)
	var dfe *DuplicateFieldReferenceError
	if err := dupe.Validate(known); !errors.As(err, &dfe) {
		t.Fatalf("Expected duplicate reference error, got %v", err)
	}

	var ig *InvalidGroupError
	if err := (Layout{}).Validate(known); !errors.As(err, &ig) {
		t.Fatalf("Empty layout accepted: %v", err)
	}
	sameID := threeGroups()
	sameID.Groups[2].ID = "a"
	if err := sameID.Validate(known); !errors.As(err, &ig) {
		t.Fatalf("Duplicate group id accepted: %v", err)
	}
	zeroCols := threeGroups()
	zeroCols.Groups[0].Columns = 0
	if err := zeroCols.Validate(known); !errors.As(err, &ig) {
		t.Fatalf("Zero columns accepted: %v", err)
	}
}

func TestPurchaseRequestPartition(t *testing.T) {
	sizes := []int{7, 3, 4, 5, 2}
	var l Layout
	next := int64(1)
	for idx, size := range sizes {
		var err error
		l, err = l.AddGroup("", 2, 4)
		if err != nil {
			t.Fatalf("Failed to add group %d: %s", idx, err.Error())
		}
		for n := 0; n < size; n++ {
			l.Groups[idx].FieldIDs = append(l.Groups[idx].FieldIDs, next)
			next++
		}
	}
	if err := l.Validate(ids(1, 21)); err != nil {
		t.Fatalf("Partition of 21 fields rejected: %s", err.Error())
	}
	if free := l.Unassigned(ids(1, 21)); len(free) != 0 {
		t.Fatalf("Unassigned fields in full partition: %v", free)
	}
	checkExclusive(t, l)
}

// Package layout arranges the fields of a form into titled groups with a
// column count and spacing. All operations work on values: they return a new
// Layout and never modify their input.
package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/G-Node/formdesk/formdesk/form"
)

const (
	// DefaultGroupID is the id of the group in a layout that was never saved.
	DefaultGroupID    = "default"
	DefaultGroupTitle = "Form Fields"
	DefaultSpacing    = 4

	groupIDPrefix = "group-"
)

// Group is a titled set of fields rendered in a grid of Columns columns.
type Group struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Columns  int     `json:"columns"`
	Spacing  int     `json:"spacing"`
	FieldIDs []int64 `json:"formfieldIds"`
}

// Layout is the ordered list of groups of a form.
type Layout struct {
	Groups []Group `json:"groups"`
}

// Direction of a move between groups.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Default returns the implicit layout of a form without a saved layout: a
// single one column group with every field in order.
func Default(fields []form.Field) Layout {
	sorted := make([]form.Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})
	ids := make([]int64, len(sorted))
	for idx := range sorted {
		ids[idx] = sorted[idx].ID
	}
	return Layout{Groups: []Group{{
		ID:       DefaultGroupID,
		Title:    DefaultGroupTitle,
		Columns:  1,
		Spacing:  DefaultSpacing,
		FieldIDs: ids,
	}}}
}

// Span tokens of the twelve column grid used by the renderer.
const (
	SpanFull    = "col-span-12"
	SpanHalf    = "col-span-12 md:col-span-6"
	SpanThird   = "col-span-12 md:col-span-4"
	SpanQuarter = "col-span-12 md:col-span-3"
)

// ColumnSpan returns the span token for a field in a group with the given
// number of columns. Unsupported column counts fall back to half width.
func ColumnSpan(columns int) string {
	switch columns {
	case 1:
		return SpanFull
	case 2:
		return SpanHalf
	case 3:
		return SpanThird
	case 4:
		return SpanQuarter
	}
	return SpanHalf
}

// Clone returns a deep copy of the layout.
func (l Layout) Clone() Layout {
	if l.Groups == nil {
		return Layout{}
	}
	groups := make([]Group, len(l.Groups))
	for idx, g := range l.Groups {
		groups[idx] = g
		if g.FieldIDs != nil {
			groups[idx].FieldIDs = append([]int64{}, g.FieldIDs...)
		}
	}
	return Layout{Groups: groups}
}

// Locate returns the index of the group containing the field and the
// position of the field in it, or -1, -1.
func (l Layout) Locate(fieldID int64) (int, int) {
	for gidx, g := range l.Groups {
		for pos, id := range g.FieldIDs {
			if id == fieldID {
				return gidx, pos
			}
		}
	}
	return -1, -1
}

func (l Layout) groupIndex(groupID string) int {
	for idx := range l.Groups {
		if l.Groups[idx].ID == groupID {
			return idx
		}
	}
	return -1
}

// Group returns the group with the given id.
func (l Layout) Group(groupID string) (Group, bool) {
	if idx := l.groupIndex(groupID); idx >= 0 {
		return l.Clone().Groups[idx], true
	}
	return Group{}, false
}

// MoveField moves the field to the end of the group before (Up) or after
// (Down) the group that holds it. At the layout boundary, or when no group
// holds the field, the layout is returned unchanged.
func (l Layout) MoveField(fieldID int64, dir Direction) Layout {
	out := l.Clone()
	gidx, pos := out.Locate(fieldID)
	if gidx < 0 {
		return out
	}
	target := gidx - 1
	if dir == Down {
		target = gidx + 1
	} else if dir != Up {
		return out
	}
	if target < 0 || target >= len(out.Groups) {
		return out
	}
	src := out.Groups[gidx].FieldIDs
	out.Groups[gidx].FieldIDs = append(src[:pos:pos], src[pos+1:]...)
	out.Groups[target].FieldIDs = append(out.Groups[target].FieldIDs, fieldID)
	return out
}

// Reorder moves the field at position from to position to within one group,
// shifting the fields in between. Stale indices or an unknown group leave
// the layout unchanged.
func (l Layout) Reorder(groupID string, from, to int) Layout {
	out := l.Clone()
	gidx := out.groupIndex(groupID)
	if gidx < 0 {
		return out
	}
	ids := out.Groups[gidx].FieldIDs
	if from < 0 || to < 0 || from >= len(ids) || to >= len(ids) || from == to {
		return out
	}
	moved := ids[from]
	if from < to {
		copy(ids[from:to], ids[from+1:to+1])
	} else {
		copy(ids[to+1:from+1], ids[to:from])
	}
	ids[to] = moved
	return out
}

// InvalidGroupError is returned for a group with unusable display settings.
type InvalidGroupError struct {
	GroupID string
	Reason  string
}

func (e *InvalidGroupError) Error() string {
	return fmt.Sprintf("invalid group %q: %s", e.GroupID, e.Reason)
}

func checkGroupSettings(id string, columns, spacing int) error {
	if columns < 1 {
		return &InvalidGroupError{GroupID: id, Reason: fmt.Sprintf("columns must be positive, got %d", columns)}
	}
	if spacing < 0 {
		return &InvalidGroupError{GroupID: id, Reason: fmt.Sprintf("spacing must not be negative, got %d", spacing)}
	}
	return nil
}

// NextGroupID mints an id that no group of the layout uses. The counter
// continues after the highest numeric suffix of any "group-N" id.
func (l Layout) NextGroupID() string {
	highest := 0
	for _, g := range l.Groups {
		if !strings.HasPrefix(g.ID, groupIDPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(g.ID, groupIDPrefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	return groupIDPrefix + strconv.Itoa(highest+1)
}

// AddGroup appends an empty group. An empty title becomes "Group N", N
// being the number in the minted id.
func (l Layout) AddGroup(title string, columns, spacing int) (Layout, error) {
	id := l.NextGroupID()
	if err := checkGroupSettings(id, columns, spacing); err != nil {
		return l.Clone(), err
	}
	if strings.TrimSpace(title) == "" {
		title = "Group " + strings.TrimPrefix(id, groupIDPrefix)
	}
	out := l.Clone()
	out.Groups = append(out.Groups, Group{ID: id, Title: title, Columns: columns, Spacing: spacing, FieldIDs: []int64{}})
	return out, nil
}

// UpdateGroup changes the title and display settings of a group. An unknown
// group leaves the layout unchanged.
func (l Layout) UpdateGroup(groupID, title string, columns, spacing int) (Layout, error) {
	out := l.Clone()
	gidx := out.groupIndex(groupID)
	if gidx < 0 {
		return out, nil
	}
	if err := checkGroupSettings(groupID, columns, spacing); err != nil {
		return out, err
	}
	out.Groups[gidx].Title = title
	out.Groups[gidx].Columns = columns
	out.Groups[gidx].Spacing = spacing
	return out, nil
}

// LastGroupError is returned when deleting the only group of a layout.
type LastGroupError struct {
	GroupID string
}

func (e *LastGroupError) Error() string {
	return fmt.Sprintf("cannot delete group %q: a layout needs at least one group", e.GroupID)
}

// DeleteGroup removes a group. Its fields become unassigned. Deleting an
// unknown group is a no-op.
func (l Layout) DeleteGroup(groupID string) (Layout, error) {
	out := l.Clone()
	gidx := out.groupIndex(groupID)
	if gidx < 0 {
		return out, nil
	}
	if len(out.Groups) == 1 {
		return out, &LastGroupError{GroupID: groupID}
	}
	out.Groups = append(out.Groups[:gidx], out.Groups[gidx+1:]...)
	return out, nil
}

// RemoveField strips the field from every group.
func (l Layout) RemoveField(fieldID int64) Layout {
	out := l.Clone()
	for gidx := range out.Groups {
		ids := out.Groups[gidx].FieldIDs[:0]
		for _, id := range out.Groups[gidx].FieldIDs {
			if id != fieldID {
				ids = append(ids, id)
			}
		}
		out.Groups[gidx].FieldIDs = ids
	}
	return out
}

// AppendField adds the field to the end of the first group unless a group
// already holds it.
func (l Layout) AppendField(fieldID int64) Layout {
	out := l.Clone()
	if len(out.Groups) == 0 {
		return out
	}
	if gidx, _ := out.Locate(fieldID); gidx >= 0 {
		return out
	}
	out.Groups[0].FieldIDs = append(out.Groups[0].FieldIDs, fieldID)
	return out
}

// Unassigned returns the ids from fieldIDs that no group holds, in the given
// order.
func (l Layout) Unassigned(fieldIDs []int64) []int64 {
	assigned := make(map[int64]bool)
	for _, g := range l.Groups {
		for _, id := range g.FieldIDs {
			assigned[id] = true
		}
	}
	var free []int64
	for _, id := range fieldIDs {
		if !assigned[id] {
			free = append(free, id)
		}
	}
	return free
}

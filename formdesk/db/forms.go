package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/G-Node/formdesk/formdesk/form"
	"github.com/G-Node/formdesk/formdesk/layout"
	"xorm.io/xorm"
)

type formRecord struct {
	ID          int64  `xorm:"pk autoincr"`
	Name        string `xorm:"unique notnull"`
	Description string `xorm:"text"`
	Locked      bool
	Created     time.Time `xorm:"created"`
	Updated     time.Time `xorm:"updated"`
}

func (formRecord) TableName() string { return "form" }

// Form is a form definition with its fields and effective layout.
type Form struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Locked      bool         `json:"locked"`
	Created     time.Time    `json:"created"`
	Fields      []form.Field `json:"fields"`
	// Layout is the saved layout, or the default layout of the fields when
	// LayoutSaved is false.
	Layout      layout.Layout `json:"layout"`
	LayoutSaved bool          `json:"layoutSaved"`
}

// FieldIDs returns the ids of the fields of the form.
func (f *Form) FieldIDs() []int64 {
	ids := make([]int64, len(f.Fields))
	for idx := range f.Fields {
		ids[idx] = f.Fields[idx].ID
	}
	return ids
}

// Field returns the field with the given id.
func (f *Form) Field(id int64) (form.Field, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return form.Field{}, false
}

func (rec *formRecord) toForm() *Form {
	return &Form{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Locked:      rec.Locked,
		Created:     rec.Created,
	}
}

// CreateForm creates an empty form. Names are unique.
func (conn *Connection) CreateForm(ctx context.Context, name, description string) (*Form, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, form.NewConstraintError("form", fmt.Errorf("name must not be empty"))
	}
	rec := &formRecord{Name: name, Description: description}
	err := conn.tx(ctx, func(sess *xorm.Session) error {
		exists, err := sess.Where("name = ?", name).Exist(new(formRecord))
		if err != nil {
			return err
		}
		if exists {
			return &DuplicateNameError{Name: name}
		}
		_, err = sess.Insert(rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	conn.log.WithField("form", name).Info("Form created")
	f := rec.toForm()
	f.Layout = layout.Default(nil)
	return f, nil
}

func (conn *Connection) getFormRecord(sess *xorm.Session, rec *formRecord) error {
	key := interface{}(rec.ID)
	if rec.ID == 0 {
		key = rec.Name
	}
	has, err := sess.Get(rec)
	if err != nil {
		return err
	} else if !has {
		return notFound("form", key)
	}
	return nil
}

// GetForm retrieves a form by name together with its fields and layout.
// With a non-empty locale, field texts are localized where a localization
// exists.
func (conn *Connection) GetForm(ctx context.Context, name, locale string) (*Form, error) {
	if name == "" {
		return nil, notFound("form", "\"\"")
	}
	return conn.loadForm(ctx, &formRecord{Name: name}, locale)
}

// GetFormByID retrieves a form by id together with its fields and layout.
func (conn *Connection) GetFormByID(ctx context.Context, id int64, locale string) (*Form, error) {
	if id <= 0 {
		return nil, notFound("form", id)
	}
	return conn.loadForm(ctx, &formRecord{ID: id}, locale)
}

func (conn *Connection) loadForm(ctx context.Context, rec *formRecord, locale string) (*Form, error) {
	sess := conn.engine.NewSession()
	defer sess.Close()
	sess = sess.Context(ctx)

	if err := conn.getFormRecord(sess, rec); err != nil {
		return nil, err
	}
	f := rec.toForm()
	fields, err := conn.formFields(sess, rec.ID)
	if err != nil {
		return nil, err
	}
	if locale != "" {
		if fields, err = conn.localize(sess, fields, locale); err != nil {
			return nil, err
		}
	}
	f.Fields = fields

	l, saved, err := conn.layoutOf(sess, rec.ID)
	if err != nil {
		return nil, err
	}
	if !saved {
		l = layout.Default(fields)
	}
	f.Layout = l
	f.LayoutSaved = saved
	return f, nil
}

// ListForms returns the forms whose name or description contains search,
// ignoring case. % and _ in search match literally. An empty search lists
// every form. Fields and layouts are not loaded.
func (conn *Connection) ListForms(ctx context.Context, search string) ([]Form, error) {
	var recs []formRecord
	sess := conn.engine.Context(ctx).OrderBy("id")
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		sess = sess.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if err := sess.Find(&recs); err != nil {
		return nil, err
	}
	forms := make([]Form, len(recs))
	for idx := range recs {
		forms[idx] = *recs[idx].toForm()
	}
	return forms, nil
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SetLocked locks or unlocks the definition of a form.
func (conn *Connection) SetLocked(ctx context.Context, formID int64, locked bool) error {
	n, err := conn.engine.Context(ctx).ID(formID).Cols("locked").Update(&formRecord{Locked: locked})
	if err != nil {
		return err
	}
	if n == 0 {
		exists, err := conn.engine.Context(ctx).ID(formID).Exist(new(formRecord))
		if err != nil {
			return err
		}
		if !exists {
			return notFound("form", formID)
		}
	}
	return nil
}

// DeleteForm deletes the form with its fields, localizations, layout,
// drafts and submissions.
func (conn *Connection) DeleteForm(ctx context.Context, formID int64) error {
	return conn.tx(ctx, func(sess *xorm.Session) error {
		rec := &formRecord{ID: formID}
		if err := conn.getFormRecord(sess, rec); err != nil {
			return err
		}
		var fieldIDs []int64
		if err := sess.Table(new(fieldRecord)).Where("form_id = ?", formID).Cols("id").Find(&fieldIDs); err != nil {
			return err
		}
		if len(fieldIDs) > 0 {
			if _, err := sess.In("field_id", fieldIDs).Delete(new(localizationRecord)); err != nil {
				return err
			}
		}
		for _, bean := range []interface{}{new(fieldRecord), new(layoutRecord), new(Draft), new(Submission)} {
			if _, err := sess.Where("form_id = ?", formID).Delete(bean); err != nil {
				return err
			}
		}
		if _, err := sess.ID(formID).Delete(new(formRecord)); err != nil {
			return err
		}
		conn.log.WithField("form", rec.Name).WithField("fields", len(fieldIDs)).Info("Form deleted")
		return nil
	})
}

// editable loads the form record and fails if the form is locked.
func (conn *Connection) editable(sess *xorm.Session, formID int64) (*formRecord, error) {
	rec := &formRecord{ID: formID}
	if err := conn.getFormRecord(sess, rec); err != nil {
		return nil, err
	}
	if rec.Locked {
		return nil, &FormLockedError{Name: rec.Name}
	}
	return rec, nil
}

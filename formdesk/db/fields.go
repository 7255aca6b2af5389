package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/G-Node/formdesk/formdesk/form"
	"xorm.io/xorm"
)

type fieldRecord struct {
	ID          int64 `xorm:"pk autoincr"`
	FormID      int64 `xorm:"index notnull"`
	Label       string
	Description string `xorm:"text"`
	Placeholder string
	Tooltip     string
	Type        string
	Required    bool
	Order       int `xorm:"'field_order'"`

	MinLength        *int
	MaxLength        *int
	Pattern          string
	MinValue         *float64
	MaxValue         *float64
	Step             *float64
	MinDate          string
	MaxDate          string
	SelectOptions    string `xorm:"text"`
	MaxFileSize      *int64
	AllowedFileTypes []string `xorm:"json text"`
}

func (fieldRecord) TableName() string { return "form_field" }

func newFieldRecord(formID int64, spec form.Spec) *fieldRecord {
	c := spec.Constraints
	return &fieldRecord{
		FormID:           formID,
		Label:            spec.Label,
		Description:      spec.Description,
		Placeholder:      spec.Placeholder,
		Tooltip:          spec.Tooltip,
		Type:             string(spec.Type),
		Required:         spec.Required,
		Order:            spec.Order,
		MinLength:        c.MinLength,
		MaxLength:        c.MaxLength,
		Pattern:          c.Pattern,
		MinValue:         c.MinValue,
		MaxValue:         c.MaxValue,
		Step:             c.Step,
		MinDate:          c.MinDate,
		MaxDate:          c.MaxDate,
		SelectOptions:    form.JoinOptions(c.SelectOptions),
		MaxFileSize:      c.MaxFileSize,
		AllowedFileTypes: c.AllowedFileTypes,
	}
}

func (rec *fieldRecord) toField() form.Field {
	return form.Field{
		ID:     rec.ID,
		FormID: rec.FormID,
		Spec: form.Spec{
			Label:       rec.Label,
			Description: rec.Description,
			Placeholder: rec.Placeholder,
			Tooltip:     rec.Tooltip,
			Type:        form.FieldType(rec.Type),
			Required:    rec.Required,
			Order:       rec.Order,
			Constraints: form.Constraints{
				MinLength:        rec.MinLength,
				MaxLength:        rec.MaxLength,
				Pattern:          rec.Pattern,
				MinValue:         rec.MinValue,
				MaxValue:         rec.MaxValue,
				Step:             rec.Step,
				MinDate:          rec.MinDate,
				MaxDate:          rec.MaxDate,
				SelectOptions:    form.ParseOptions(rec.SelectOptions),
				MaxFileSize:      rec.MaxFileSize,
				AllowedFileTypes: rec.AllowedFileTypes,
			},
		},
	}
}

type localizationRecord struct {
	ID            int64  `xorm:"pk autoincr"`
	FieldID       int64  `xorm:"unique(field_locale) notnull"`
	Locale        string `xorm:"unique(field_locale) notnull"`
	Label         string
	Description   string `xorm:"text"`
	Placeholder   string
	Tooltip       string
	SelectOptions string `xorm:"text"`
}

func (localizationRecord) TableName() string { return "form_field_localization" }

func (rec *localizationRecord) toLocalization() form.Localization {
	return form.Localization{
		Locale:        rec.Locale,
		Label:         rec.Label,
		Description:   rec.Description,
		Placeholder:   rec.Placeholder,
		Tooltip:       rec.Tooltip,
		SelectOptions: form.ParseOptions(rec.SelectOptions),
	}
}

func (conn *Connection) formFields(sess *xorm.Session, formID int64) ([]form.Field, error) {
	var recs []fieldRecord
	if err := sess.Where("form_id = ?", formID).OrderBy("field_order, id").Find(&recs); err != nil {
		return nil, err
	}
	fields := make([]form.Field, len(recs))
	for idx := range recs {
		fields[idx] = recs[idx].toField()
	}
	return fields, nil
}

func (conn *Connection) localize(sess *xorm.Session, fields []form.Field, locale string) ([]form.Field, error) {
	if len(fields) == 0 {
		return fields, nil
	}
	ids := make([]int64, len(fields))
	for idx := range fields {
		ids[idx] = fields[idx].ID
	}
	var recs []localizationRecord
	if err := sess.In("field_id", ids).And("locale = ?", locale).Find(&recs); err != nil {
		return nil, err
	}
	byField := make(map[int64]form.Localization, len(recs))
	for idx := range recs {
		byField[recs[idx].FieldID] = recs[idx].toLocalization()
	}
	out := make([]form.Field, len(fields))
	for idx, f := range fields {
		if loc, ok := byField[f.ID]; ok {
			f = f.Localize(loc)
		}
		out[idx] = f
	}
	return out, nil
}

// AddField validates the spec and adds a field to the form. When the form
// has a saved layout, the field is appended to its first group.
func (conn *Connection) AddField(ctx context.Context, formID int64, spec form.Spec) (*form.Field, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	rec := newFieldRecord(formID, spec)
	err := conn.tx(ctx, func(sess *xorm.Session) error {
		if _, err := conn.editable(sess, formID); err != nil {
			return err
		}
		if _, err := sess.Insert(rec); err != nil {
			return err
		}
		l, saved, err := conn.layoutOf(sess, formID)
		if err != nil || !saved {
			return err
		}
		return conn.putLayout(sess, formID, l.AppendField(rec.ID))
	})
	if err != nil {
		return nil, err
	}
	f := rec.toField()
	conn.log.WithField("form_id", formID).WithField("field", f.ID).Debug("Field added")
	return &f, nil
}

// UpdateField replaces the definition of a field.
func (conn *Connection) UpdateField(ctx context.Context, formID, fieldID int64, spec form.Spec) (*form.Field, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	rec := newFieldRecord(formID, spec)
	rec.ID = fieldID
	err := conn.tx(ctx, func(sess *xorm.Session) error {
		if _, err := conn.editable(sess, formID); err != nil {
			return err
		}
		exists, err := sess.Where("id = ? AND form_id = ?", fieldID, formID).Exist(new(fieldRecord))
		if err != nil {
			return err
		}
		if !exists {
			return notFound("field", fieldID)
		}
		_, err = sess.ID(fieldID).AllCols().Update(rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	f := rec.toField()
	return &f, nil
}

// RemoveField deletes a field and its localizations and strips it from the
// saved layout of the form. Removing a field that does not exist succeeds.
func (conn *Connection) RemoveField(ctx context.Context, formID, fieldID int64) error {
	return conn.tx(ctx, func(sess *xorm.Session) error {
		if _, err := conn.editable(sess, formID); err != nil {
			return err
		}
		n, err := sess.Where("id = ? AND form_id = ?", fieldID, formID).Delete(new(fieldRecord))
		if err != nil {
			return err
		}
		// localizations belong to the field; a field of another form is left alone
		if n > 0 {
			if _, err := sess.Where("field_id = ?", fieldID).Delete(new(localizationRecord)); err != nil {
				return err
			}
		}
		l, saved, err := conn.layoutOf(sess, formID)
		if err != nil || !saved {
			return err
		}
		return conn.putLayout(sess, formID, l.RemoveField(fieldID))
	})
}

// SetLocalization stores the texts of a field for one locale, replacing an
// earlier localization for the same locale.
func (conn *Connection) SetLocalization(ctx context.Context, formID, fieldID int64, loc form.Localization) error {
	loc.Locale = strings.TrimSpace(loc.Locale)
	if loc.Locale == "" {
		return form.NewConstraintError("localization", fmt.Errorf("locale must not be empty"))
	}
	rec := &localizationRecord{
		FieldID:       fieldID,
		Locale:        loc.Locale,
		Label:         loc.Label,
		Description:   loc.Description,
		Placeholder:   loc.Placeholder,
		Tooltip:       loc.Tooltip,
		SelectOptions: form.JoinOptions(loc.SelectOptions),
	}
	return conn.tx(ctx, func(sess *xorm.Session) error {
		exists, err := sess.Where("id = ? AND form_id = ?", fieldID, formID).Exist(new(fieldRecord))
		if err != nil {
			return err
		}
		if !exists {
			return notFound("field", fieldID)
		}
		if _, err := sess.Where("field_id = ? AND locale = ?", fieldID, loc.Locale).Delete(new(localizationRecord)); err != nil {
			return err
		}
		_, err = sess.Insert(rec)
		return err
	})
}

// Localizations returns every localization stored for a field.
func (conn *Connection) Localizations(ctx context.Context, fieldID int64) ([]form.Localization, error) {
	var recs []localizationRecord
	if err := conn.engine.Context(ctx).Where("field_id = ?", fieldID).OrderBy("locale").Find(&recs); err != nil {
		return nil, err
	}
	locs := make([]form.Localization, len(recs))
	for idx := range recs {
		locs[idx] = recs[idx].toLocalization()
	}
	return locs, nil
}

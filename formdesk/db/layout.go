package db

import (
	"context"
	"time"

	"github.com/G-Node/formdesk/formdesk/layout"
	"xorm.io/xorm"
)

// layoutRecord holds the saved layout of a form. A form without a record
// uses the default layout.
type layoutRecord struct {
	FormID int64          `xorm:"pk"`
	Groups []layout.Group `xorm:"json text"`
	Saved  time.Time
}

func (layoutRecord) TableName() string { return "form_layout" }

func (conn *Connection) layoutOf(sess *xorm.Session, formID int64) (layout.Layout, bool, error) {
	rec := &layoutRecord{FormID: formID}
	has, err := sess.Get(rec)
	if err != nil || !has {
		return layout.Layout{}, false, err
	}
	return layout.Layout{Groups: rec.Groups}, true, nil
}

// putLayout replaces the saved layout of a form.
func (conn *Connection) putLayout(sess *xorm.Session, formID int64, l layout.Layout) error {
	if _, err := sess.Where("form_id = ?", formID).Delete(new(layoutRecord)); err != nil {
		return err
	}
	groups := l.Clone().Groups
	for idx := range groups {
		if groups[idx].FieldIDs == nil {
			groups[idx].FieldIDs = []int64{}
		}
	}
	_, err := sess.Insert(&layoutRecord{FormID: formID, Groups: groups, Saved: time.Now()})
	return err
}

// SaveLayout replaces the layout of a form after checking it against the
// fields of the form. Saving the same layout twice is harmless.
func (conn *Connection) SaveLayout(ctx context.Context, formID int64, l layout.Layout) error {
	return conn.tx(ctx, func(sess *xorm.Session) error {
		rec, err := conn.editable(sess, formID)
		if err != nil {
			return err
		}
		fields, err := conn.formFields(sess, formID)
		if err != nil {
			return err
		}
		ids := make([]int64, len(fields))
		for idx := range fields {
			ids[idx] = fields[idx].ID
		}
		if err := l.Validate(ids); err != nil {
			return err
		}
		if err := conn.putLayout(sess, formID, l); err != nil {
			return err
		}
		conn.log.WithField("form", rec.Name).WithField("groups", len(l.Groups)).Info("Layout saved")
		return nil
	})
}

// GetLayout returns the effective layout of a form and whether it was
// saved.
func (conn *Connection) GetLayout(ctx context.Context, formID int64) (layout.Layout, bool, error) {
	f, err := conn.GetFormByID(ctx, formID, "")
	if err != nil {
		return layout.Layout{}, false, err
	}
	return f.Layout, f.LayoutSaved, nil
}

// ResetLayout discards the saved layout so that the form falls back to the
// default layout.
func (conn *Connection) ResetLayout(ctx context.Context, formID int64) error {
	return conn.tx(ctx, func(sess *xorm.Session) error {
		if _, err := conn.editable(sess, formID); err != nil {
			return err
		}
		_, err := sess.Where("form_id = ?", formID).Delete(new(layoutRecord))
		return err
	})
}

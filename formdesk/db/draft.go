package db

import (
	"context"
	"time"

	"github.com/G-Node/formdesk/formdesk/answer"
	"github.com/google/uuid"
)

// Draft holds the answers of one editing session that has not been
// submitted yet.
type Draft struct {
	// Draft ID (handed to the client)
	ID     string `xorm:"pk" json:"id"`
	FormID int64  `xorm:"index" json:"formId"`
	// Answers in wire form
	Answers []answer.Record `xorm:"json text" json:"answers"`
	// ClearToken is set while a request to clear all answers waits for
	// confirmation.
	ClearToken string    `json:"-"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
}

// NewDraft creates a draft for a form holding the given answers, with a new
// unique ID.
func NewDraft(formID int64, set *answer.Set) *Draft {
	d := new(Draft)
	d.ID = uuid.New().String()
	d.FormID = formID
	d.Answers = set.Records()
	d.Created = time.Now()
	d.Updated = d.Created
	return d
}

// AnswerSet returns the answers of the draft.
func (d *Draft) AnswerSet() *answer.Set {
	return answer.FromRecords(d.Answers)
}

// SetAnswers replaces the answers of the draft.
func (d *Draft) SetAnswers(set *answer.Set) {
	d.Answers = set.Records()
	d.Updated = time.Now()
}

// InsertDraft inserts a new Draft into the database.
func (conn *Connection) InsertDraft(ctx context.Context, d *Draft) error {
	_, err := conn.engine.Context(ctx).Insert(d)
	return err
}

// UpdateDraft stores the answers and clear token of an existing Draft.
func (conn *Connection) UpdateDraft(ctx context.Context, d *Draft) error {
	n, err := conn.engine.Context(ctx).ID(d.ID).Cols("answers", "clear_token", "updated").Update(d)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("draft", d.ID)
	}
	return nil
}

// GetDraft retrieves a Draft from the database given its ID.
func (conn *Connection) GetDraft(ctx context.Context, id string) (*Draft, error) {
	d := new(Draft)
	if has, err := conn.engine.Context(ctx).ID(id).Get(d); err != nil {
		return nil, err
	} else if !has {
		return nil, notFound("draft", id)
	}
	return d, nil
}

// DeleteDraft removes a Draft from the database.
func (conn *Connection) DeleteDraft(ctx context.Context, id string) error {
	_, err := conn.engine.Context(ctx).ID(id).Delete(new(Draft))
	return err
}

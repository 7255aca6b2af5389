package db

import (
	"context"
	"time"

	"github.com/G-Node/formdesk/formdesk/answer"
)

// Submission is a serialized answer set handed in for a form, together
// with the outcome of the post-submit action.
type Submission struct {
	// Submission ID (auto)
	ID int64 `xorm:"pk autoincr" json:"id"`
	// Form the answers belong to
	FormID int64 `xorm:"index" json:"formId"`
	// Name/label of the submission
	Label string `json:"label"`
	// Answers in wire form, empty answers included
	Answers []answer.Record `xorm:"json text" json:"answers"`
	// Messages returned from the post-submit action
	Messages []string `xorm:"json text" json:"messages"`
	// Error returned from the post-submit action
	Error string `xorm:"text" json:"error,omitempty"`
	// Time when the submission was queued
	SubmitTime time.Time `json:"submitTime"`
	// Time when the action finished (0 if ongoing)
	EndTime time.Time `json:"endTime"`
}

// InsertSubmission inserts a new Submission into the database. Upon
// successful return, the Submission has a new unique ID.
func (conn *Connection) InsertSubmission(ctx context.Context, s *Submission) error {
	_, err := conn.engine.Context(ctx).Insert(s) // ID is assigned on insertion
	return err
}

// UpdateSubmission updates an existing Submission entry in the database.
func (conn *Connection) UpdateSubmission(ctx context.Context, s *Submission) error {
	_, err := conn.engine.Context(ctx).ID(s.ID).AllCols().Update(s)
	return err
}

// IsFinished returns true if the post-submit action has finished.
func (s *Submission) IsFinished() bool {
	return !s.EndTime.IsZero()
}

// AnswerSet returns the answers of the submission.
func (s *Submission) AnswerSet() *answer.Set {
	return answer.FromRecords(s.Answers)
}

// FormSubmissions returns the submissions for a form, newest first.
func (conn *Connection) FormSubmissions(ctx context.Context, formID int64) ([]Submission, error) {
	submissions := make([]Submission, 0)
	if err := conn.engine.Context(ctx).Where("form_id = ?", formID).Desc("id").Find(&submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// GetSubmission retrieves a Submission from the database given its ID.
func (conn *Connection) GetSubmission(ctx context.Context, id int64) (*Submission, error) {
	s := new(Submission)
	if has, err := conn.engine.Context(ctx).ID(id).Get(s); err != nil {
		return nil, err
	} else if !has {
		return nil, notFound("submission", id)
	}
	return s, nil
}

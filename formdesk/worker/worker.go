package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/G-Node/formdesk/formdesk/answer"
	"github.com/G-Node/formdesk/formdesk/db"
	"github.com/sirupsen/logrus"
)

// SubmitAction runs for every submission after it was stored. The returned
// messages are kept with the submission.
type SubmitAction func(f *db.Form, set *answer.Set) ([]string, error)

// DefaultQueueLength is used when New is given a non-positive length.
const DefaultQueueLength = 100

// Worker with queue for running the submit action asynchronously.
type Worker struct {
	queue    chan *db.Submission
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	Action   SubmitAction
	db       *db.Connection
	log      logrus.FieldLogger
}

// New returns a Worker storing submissions in dbconn.
func New(dbconn *db.Connection, queueLength int, logger logrus.FieldLogger) *Worker {
	if queueLength <= 0 {
		queueLength = DefaultQueueLength
	}
	w := new(Worker)
	w.queue = make(chan *db.Submission, queueLength)
	w.stop = make(chan struct{})
	w.db = dbconn
	w.log = logger
	w.Action = LogAction(logger)
	return w
}

// LogAction returns an action that logs a summary of each submission.
func LogAction(logger logrus.FieldLogger) SubmitAction {
	return func(f *db.Form, set *answer.Set) ([]string, error) {
		answered := 0
		for _, r := range set.Records() {
			if r.Content != "" {
				answered++
			}
		}
		msg := fmt.Sprintf("%d of %d fields answered", answered, len(f.Fields))
		logger.WithField("form", f.Name).Info(msg)
		return []string{msg}, nil
	}
}

// Enqueue stores the submission and adds it to the queue. It blocks while
// the queue is full, until ctx is done.
func (w *Worker) Enqueue(ctx context.Context, s *db.Submission) error {
	s.SubmitTime = time.Now()
	if s.Label == "" {
		s.Label = fmt.Sprintf("Form %d", s.FormID)
	}
	if err := w.db.InsertSubmission(ctx, s); err != nil {
		return fmt.Errorf("failed to store submission: %w", err)
	}
	select {
	case w.queue <- s:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop ends the worker loop after the submission in progress. Submissions
// still queued stay unfinished in the database.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	if w.done != nil {
		<-w.done
	}
}

func (w *Worker) run(s *db.Submission) {
	ctx := context.Background()
	log := w.log.WithField("submission", s.ID).WithField("label", s.Label)
	defer func() {
		// Update submission entry in db when done
		if err := w.db.UpdateSubmission(ctx, s); err != nil {
			log.WithError(err).Error("Failed to update submission")
		}
	}()
	log.Debug("Running submit action")

	f, err := w.db.GetFormByID(ctx, s.FormID, "")
	if err == nil {
		s.Messages, err = w.Action(f, s.AnswerSet())
	}
	s.EndTime = time.Now()
	if err == nil {
		log.Info("Submission processed")
	} else {
		log.WithError(err).Warn("Submission failed")
		s.Error = err.Error()
	}
}

// Start runs the worker loop in a goroutine.
func (w *Worker) Start() {
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		for {
			select {
			case s := <-w.queue:
				w.run(s)
			case <-w.stop:
				return
			}
		}
	}()
	w.log.Info("Worker started")
}

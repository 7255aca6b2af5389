package worker

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/G-Node/formdesk/formdesk/answer"
	"github.com/G-Node/formdesk/formdesk/db"
	"github.com/G-Node/formdesk/formdesk/form"
	"github.com/sirupsen/logrus"
)

// LogBuffer collects log output from the worker goroutine.
type LogBuffer struct {
	buf bytes.Buffer
	mut sync.Mutex
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mut.Lock()
	defer b.mut.Unlock()
	return b.buf.Write(p)
}

func (b *LogBuffer) String() string {
	b.mut.Lock()
	defer b.mut.Unlock()
	return b.buf.String()
}

func newTestWorker(t *testing.T) (*Worker, *db.Connection, *LogBuffer, func()) {
	tmpfile, err := ioutil.TempFile("", "testdb")
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %s", err.Error())
	}
	tmpfile.Close()

	conn, err := db.New(tmpfile.Name())
	if err != nil {
		t.Fatalf("Failed to initialise database connection to file %q: %s", tmpfile.Name(), err.Error())
	}

	logbuf := new(LogBuffer)
	logger := logrus.New()
	logger.SetOutput(logbuf)
	w := New(conn, 10, logger)
	return w, conn, logbuf, func() {
		w.Stop()
		conn.Close()
		os.Remove(tmpfile.Name())
	}
}

func waitFinished(t *testing.T, conn *db.Connection, id int64) *db.Submission {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s, err := conn.GetSubmission(context.Background(), id)
		if err != nil {
			t.Fatalf("Failed to retrieve submission: %s", err.Error())
		}
		if s.IsFinished() {
			return s
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Submission %d not finished", id)
	return nil
}

func TestWorkerDefaultAction(t *testing.T) {
	w, conn, logbuf, cleanup := newTestWorker(t)
	defer cleanup()
	ctx := context.Background()

	f, _ := conn.CreateForm(ctx, "survey", "")
	field, _ := conn.AddField(ctx, f.ID, form.Spec{Label: "Name", Type: form.Text})
	conn.AddField(ctx, f.ID, form.Spec{Label: "Notes", Type: form.TextArea})

	w.Start()
	set := answer.NewSet()
	set.SetContent(field.ID, "Ada")
	s := &db.Submission{FormID: f.ID, Answers: set.Records()}
	if err := w.Enqueue(ctx, s); err != nil {
		t.Fatalf("Failed to enqueue submission: %s", err.Error())
	}
	if s.ID == 0 || s.Label == "" {
		t.Fatalf("Submission not stored on enqueue: %+v", s)
	}

	done := waitFinished(t, conn, s.ID)
	if done.Error != "" {
		t.Fatalf("Submission failed: %s", done.Error)
	}
	if len(done.Messages) != 1 || done.Messages[0] != "1 of 2 fields answered" {
		t.Fatalf("Unexpected messages: %q", done.Messages)
	}
	if !strings.Contains(logbuf.String(), "fields answered") {
		t.Fatalf("Summary not logged: %s", logbuf.String())
	}
}

func TestWorkerActionError(t *testing.T) {
	w, conn, _, cleanup := newTestWorker(t)
	defer cleanup()
	ctx := context.Background()

	f, _ := conn.CreateForm(ctx, "failing", "")
	w.Action = func(f *db.Form, set *answer.Set) ([]string, error) {
		return nil, fmt.Errorf("downstream unavailable")
	}
	w.Start()

	s := &db.Submission{FormID: f.ID}
	w.Enqueue(ctx, s)
	if done := waitFinished(t, conn, s.ID); done.Error != "downstream unavailable" {
		t.Fatalf("Action error not stored: %+v", done)
	}

	orphan := &db.Submission{FormID: 999}
	w.Enqueue(ctx, orphan)
	if done := waitFinished(t, conn, orphan.ID); done.Error == "" {
		t.Fatal("Submission for missing form finished without error")
	}
}

func TestWorkerStop(t *testing.T) {
	w, _, _, cleanup := newTestWorker(t)
	defer cleanup()

	// stopping a worker that never started returns
	w.Stop()
	w.Stop()
}

func TestEnqueueFullQueue(t *testing.T) {
	w, conn, _, cleanup := newTestWorker(t)
	defer cleanup()

	f, _ := conn.CreateForm(context.Background(), "busy", "")
	// not started; the queue fills up
	for idx := 0; idx < 10; idx++ {
		if err := w.Enqueue(context.Background(), &db.Submission{FormID: f.ID}); err != nil {
			t.Fatalf("Failed to enqueue submission %d: %s", idx, err.Error())
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.Enqueue(ctx, &db.Submission{FormID: f.ID}); err == nil {
		t.Fatal("Enqueue on full queue did not give up")
	}
}

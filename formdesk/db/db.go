package db

import (
	"context"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"xorm.io/xorm"
	"xorm.io/xorm/log"
	"xorm.io/xorm/names"
)

// Supported database drivers.
const (
	SQLite   = "sqlite3"
	Postgres = "postgres"
)

// ErrNotFound is returned (wrapped) when a requested entry does not exist.
var ErrNotFound = errors.New("not found")

// DuplicateNameError is returned when creating a form with a name that is
// already taken.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a form named %q already exists", e.Name)
}

// FormLockedError is returned for changes to the definition of a locked
// form.
type FormLockedError struct {
	Name string
}

func (e *FormLockedError) Error() string {
	return fmt.Sprintf("form %q is locked", e.Name)
}

// Connection is the store for form definitions, layouts, submissions and
// drafts.
type Connection struct {
	engine *xorm.Engine
	log    logrus.FieldLogger
}

// Close the database.
func (conn *Connection) Close() error {
	return conn.engine.Close()
}

// New returns a connection to the sqlite db file at the given path.
// If it does not exist it is created.
func New(path string) (*Connection, error) {
	return Open(SQLite, path, logrus.StandardLogger())
}

// Open connects to the database with the given driver and data source and
// creates or updates the tables.
func Open(driver, source string, logger logrus.FieldLogger) (*Connection, error) {
	if driver != SQLite && driver != Postgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	engine, err := xorm.NewEngine(driver, source)
	if err != nil {
		return nil, err
	}
	engine.SetMapper(names.GonicMapper{})
	engine.Logger().SetLevel(log.LOG_WARNING)
	if l, ok := logger.(*logrus.Logger); ok && l.IsLevelEnabled(logrus.DebugLevel) {
		engine.Logger().SetLevel(log.LOG_DEBUG)
		engine.ShowSQL(true)
	}

	if err := engine.Sync2(new(formRecord), new(fieldRecord), new(localizationRecord), new(layoutRecord), new(Submission), new(Draft)); err != nil {
		engine.Close()
		return nil, fmt.Errorf("failed to sync tables: %w", err)
	}
	logger.WithField("driver", driver).Debug("Database ready")
	return &Connection{engine: engine, log: logger}, nil
}

// tx runs fn in a transaction which is committed when fn succeeds.
func (conn *Connection) tx(ctx context.Context, fn func(sess *xorm.Session) error) error {
	sess := conn.engine.NewSession()
	defer sess.Close()
	sess = sess.Context(ctx)
	if err := sess.Begin(); err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		if rerr := sess.Rollback(); rerr != nil {
			conn.log.WithError(rerr).Warn("Rollback failed")
		}
		return err
	}
	return sess.Commit()
}

func notFound(what string, key interface{}) error {
	return fmt.Errorf("%s %v: %w", what, key, ErrNotFound)
}

package formdesk

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/G-Node/formdesk/formdesk/db"
	"github.com/G-Node/formdesk/formdesk/web"
	"github.com/G-Node/formdesk/formdesk/worker"
	"github.com/sirupsen/logrus"
)

// Service represents a full service which contains a web server, a database
// for forms and submissions, and a worker that runs the submit action.
type Service struct {
	web    *web.Server
	db     *db.Connection
	worker *worker.Worker
	log    *logrus.Logger
	Config Config
}

// NewService creates a new Service for the given configuration.
func NewService(cfg Config, log *logrus.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	srv := new(Service)
	srv.Config = cfg
	srv.log = log

	log.WithField("driver", cfg.DBDriver).Info("Initialising database")
	conn, err := db.Open(cfg.DBDriver, cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	srv.db = conn

	srv.worker = worker.New(srv.db, cfg.QueueLength, log)

	srv.web = web.New(cfg.Port, log)
	srv.setupWebRoutes()
	srv.setupAPIRoutes()
	return srv, nil
}

// Start the service (worker and web server).
func (srv *Service) Start() error {
	if srv.worker.Action == nil {
		return fmt.Errorf("nil submit action is invalid")
	}
	srv.worker.Start()

	srv.log.WithField("addr", srv.web.Addr).Info("Starting web service")
	srv.web.Start()
	return nil
}

// WaitForInterrupt blocks until the service receives an interrupt signal (SIGINT).
func (srv *Service) WaitForInterrupt() {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt)
	<-sigchan
}

// Stop the service by gracefully shutting down the web service, stopping the
// worker, and closing the database connection, in that order.
func (srv *Service) Stop() {
	srv.log.Info("Stopping web service")
	srv.web.Stop()

	srv.log.Info("Stopping worker queue")
	srv.worker.Stop()

	srv.log.Info("Closing database connection")
	if err := srv.db.Close(); err != nil {
		srv.log.WithError(err).Error("Error closing database")
	}
	srv.log.Info("Service stopped")
}

// SetSubmitAction can be used to override the action run for every
// submission.
func (srv *Service) SetSubmitAction(f worker.SubmitAction) {
	srv.worker.Action = f
}

// DB returns the store of the service.
func (srv *Service) DB() *db.Connection {
	return srv.db
}

package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/G-Node/formdesk/templates"
	"github.com/go-chi/render"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server implements the web server for the form service.
type Server struct {
	*http.Server
	Router *mux.Router
	log    logrus.FieldLogger
}

// New returns a web Server listening on the given port with an initialised
// mux.Router and request logging.
func New(port uint16, logger logrus.FieldLogger) *Server {
	srv := new(Server)
	srv.Router = mux.NewRouter()
	srv.log = logger
	srv.Router.Use(srv.logRequests)

	httpsrv := new(http.Server)
	httpsrv.Handler = srv.Router
	httpsrv.Addr = fmt.Sprintf(":%d", port)
	httpsrv.WriteTimeout = time.Second * 15
	httpsrv.ReadTimeout = time.Second * 15
	httpsrv.IdleTimeout = time.Second * 60
	srv.Server = httpsrv
	return srv
}

// Start starts the embedded web server's ListenAndServe method in a goroutine
// and returns. This method does not block.
func (ws *Server) Start() {
	go func() {
		if err := ws.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.log.WithError(err).Error("Web server stopped")
		}
	}()
}

// Stop gracefully stops the web service.
func (ws *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	// Gracefully shut down, waiting for the timeout deadline for connections to close.
	if err := ws.Shutdown(ctx); err != nil {
		ws.log.WithError(err).Warn("Web server shutdown")
	}
}

// statusRecorder keeps the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (ws *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		ws.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("Request")
	})
}

// JSON writes v as JSON with the given status code.
func (ws *Server) JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// WantsHTML reports whether the client asked for an HTML response.
func WantsHTML(r *http.Request) bool {
	return render.GetAcceptedContentType(r) == render.ContentTypeHTML
}

// ErrorResponse logs server errors and answers with the given status code
// and message: an error page for browsers, a JSON object for everything
// else.
func (ws *Server) ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	if status >= http.StatusInternalServerError {
		ws.log.WithField("path", r.URL.Path).WithField("status", status).Error(message)
	}
	if !WantsHTML(r) {
		ws.JSON(w, r, status, map[string]interface{}{
			"error":   http.StatusText(status),
			"message": message,
		})
		return
	}
	ws.ErrorPage(w, status, message)
}

// ErrorPage renders an error page with the given message, returning the
// given status code to the user.
func (ws *Server) ErrorPage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	tmpl := template.New("layout")
	tmpl, err := tmpl.Parse(templates.Layout)
	if err != nil {
		tmpl = template.New("content")
	}
	tmpl, err = tmpl.Parse(templates.Fail)
	if err != nil {
		w.Write([]byte(message))
		return
	}
	errinfo := struct {
		StatusCode int
		StatusText string
		Message    string
	}{
		status,
		http.StatusText(status),
		message,
	}
	if err := tmpl.Execute(w, &errinfo); err != nil {
		ws.log.WithError(err).Error("Error rendering fail page")
	}
}

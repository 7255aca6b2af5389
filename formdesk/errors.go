package formdesk

import (
	"errors"
	"net/http"

	"github.com/G-Node/formdesk/formdesk/db"
	"github.com/G-Node/formdesk/formdesk/form"
	"github.com/G-Node/formdesk/formdesk/layout"
)

// statusFor maps store and definition errors to a response status.
func statusFor(err error) int {
	var (
		dup        *db.DuplicateNameError
		locked     *db.FormLockedError
		unknown    *form.UnknownFieldTypeError
		constraint *form.ConstraintError
		dangling   *layout.DanglingFieldReferenceError
		dupRef     *layout.DuplicateFieldReferenceError
		lastGroup  *layout.LastGroupError
		badGroup   *layout.InvalidGroupError
	)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &dup):
		return http.StatusConflict
	case errors.As(err, &locked):
		return http.StatusLocked
	case errors.As(err, &unknown), errors.As(err, &constraint), errors.As(err, &dangling),
		errors.As(err, &dupRef), errors.As(err, &lastGroup), errors.As(err, &badGroup):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail answers with the status matching err. Internal errors are logged
// and not shown to the client.
func (srv *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		srv.log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		msg = "internal error"
	}
	srv.web.ErrorResponse(w, r, status, msg)
}

// Pages for filling in forms and reading submissions
package formdesk

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/G-Node/formdesk/formdesk/answer"
	"github.com/G-Node/formdesk/formdesk/db"
	"github.com/G-Node/formdesk/formdesk/view"
	"github.com/G-Node/formdesk/templates"
	"github.com/gorilla/mux"
)

const (
	timefmt = "15:04:05 Mon Jan 2 2006"
	// uploads beyond this size are buffered on disk while parsing
	maxUploadMemory = 32 << 20
)

// setupWebRoutes sets up the HTML pages of the service.
//
// Form index, form (editable and read-only) and submission log pages
func (srv *Service) setupWebRoutes() {
	router := srv.web.Router
	router.StrictSlash(true)

	router.HandleFunc("/", srv.renderIndex).Methods("GET")
	router.HandleFunc("/forms/{name}", srv.renderForm).Methods("GET")
	router.HandleFunc("/forms/{name}", srv.processForm).Methods("POST")
	router.HandleFunc("/forms/{name}/submissions", srv.renderLog).Methods("GET")
	router.HandleFunc("/forms/{name}/submissions/{id:[0-9]+}", srv.showSubmission).Methods("GET")
	router.HandleFunc("/health", srv.health).Methods("GET")

	router.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.Dir("./assets"))))
}

// renderPage executes the content template inside the site layout. Output
// is buffered so that a failing template does not leave half a page.
func (srv *Service) renderPage(w http.ResponseWriter, status int, content string, data interface{}) {
	tmpl := template.New("layout")
	tmpl, err := tmpl.Parse(templates.Layout)
	if err == nil {
		tmpl, err = tmpl.Parse(content)
	}
	if err != nil {
		srv.log.WithError(err).Error("Failed to parse template")
		srv.web.ErrorPage(w, http.StatusInternalServerError, "Error rendering page")
		return
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		srv.log.WithError(err).Error("Failed to render page")
		srv.web.ErrorPage(w, http.StatusInternalServerError, "Error rendering page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (srv *Service) pageError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		srv.log.WithError(err).Error("Page failed")
		msg = "internal error"
	}
	srv.web.ErrorPage(w, status, msg)
}

func (srv *Service) renderIndex(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	forms, err := srv.db.ListForms(r.Context(), search)
	if err != nil {
		srv.pageError(w, err)
		return
	}
	data := map[string]interface{}{
		"forms":  forms,
		"search": search,
	}
	srv.renderPage(w, http.StatusOK, templates.FormIndex, data)
}

// renderFormPage renders a form with the given answers and validation
// messages.
func (srv *Service) renderFormPage(w http.ResponseWriter, status int, f *db.Form, set *answer.Set, errs answer.Errors, data map[string]interface{}) {
	plan, err := view.Build(f.Fields, f.Layout, set, errs)
	if err != nil {
		srv.pageError(w, err)
		return
	}
	if data == nil {
		data = make(map[string]interface{})
	}
	data["form"] = f
	data["plan"] = plan
	if len(errs) > 0 {
		data["errors"] = errs
	}
	srv.renderPage(w, status, templates.Form, data)
}

func (srv *Service) renderForm(w http.ResponseWriter, r *http.Request) {
	f, err := srv.db.GetForm(r.Context(), mux.Vars(r)["name"], r.URL.Query().Get("locale"))
	if err != nil {
		srv.pageError(w, err)
		return
	}
	srv.renderFormPage(w, http.StatusOK, f, answer.Default(f.Fields), nil, nil)
}

func (srv *Service) processForm(w http.ResponseWriter, r *http.Request) {
	f, err := srv.db.GetForm(r.Context(), mux.Vars(r)["name"], "")
	if err != nil {
		srv.pageError(w, err)
		return
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxUploadMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		srv.web.ErrorPage(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	schema, err := answer.BuildSchema(f.Fields)
	if err != nil {
		srv.pageError(w, err)
		return
	}
	set := view.Bind(f.Fields, r.PostForm)
	var uploadErrs answer.Errors
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
		uploadErrs = view.BindUploads(f.Fields, r.MultipartForm.File, set)
	}
	errs := schema.Validate(set)
	for id, msg := range uploadErrs {
		if errs == nil {
			errs = make(answer.Errors)
		}
		errs[id] = msg
	}
	if len(errs) > 0 {
		srv.renderFormPage(w, http.StatusUnprocessableEntity, f, set, errs, nil)
		return
	}

	s := &db.Submission{FormID: f.ID, Label: f.Name, Answers: set.Records()}
	if err := srv.worker.Enqueue(r.Context(), s); err != nil {
		srv.pageError(w, err)
		return
	}
	// redirect to submission log
	http.Redirect(w, r, "/forms/"+f.Name+"/submissions", http.StatusSeeOther)
}

func (srv *Service) renderLog(w http.ResponseWriter, r *http.Request) {
	f, err := srv.db.GetForm(r.Context(), mux.Vars(r)["name"], "")
	if err != nil {
		srv.pageError(w, err)
		return
	}
	submissions, err := srv.db.FormSubmissions(r.Context(), f.ID)
	if err != nil {
		srv.pageError(w, err)
		return
	}
	data := map[string]interface{}{
		"form":        f,
		"submissions": submissions,
	}
	srv.renderPage(w, http.StatusOK, templates.SubmissionLog, data)
}

func (srv *Service) showSubmission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		srv.web.ErrorPage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	f, err := srv.db.GetForm(r.Context(), vars["name"], r.URL.Query().Get("locale"))
	if err != nil {
		srv.pageError(w, err)
		return
	}
	s, err := srv.db.GetSubmission(r.Context(), id)
	if err != nil || s.FormID != f.ID {
		srv.web.ErrorPage(w, http.StatusNotFound, "No such submission")
		return
	}

	// Add timestamps and action messages to template data and set read-only
	data := map[string]interface{}{
		"readonly":    true,
		"submit_time": s.SubmitTime.Format(timefmt),
		"messages":    s.Messages,
	}
	if s.IsFinished() {
		data["end_time"] = s.EndTime.Format(timefmt)
	}
	if s.Error != "" {
		data["error"] = s.Error
	}
	srv.renderFormPage(w, http.StatusOK, f, s.AnswerSet(), nil, data)
}

func (srv *Service) health(w http.ResponseWriter, r *http.Request) {
	srv.web.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

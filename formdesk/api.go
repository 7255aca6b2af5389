// JSON API for managing form definitions and layouts and for collecting
// answers
package formdesk

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/G-Node/formdesk/formdesk/answer"
	"github.com/G-Node/formdesk/formdesk/db"
	"github.com/G-Node/formdesk/formdesk/form"
	"github.com/G-Node/formdesk/formdesk/layout"
	"github.com/G-Node/formdesk/formdesk/view"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// setupAPIRoutes sets up the JSON routes under /api.
func (srv *Service) setupAPIRoutes() {
	api := srv.web.Router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/forms", srv.listForms).Methods("GET")
	api.HandleFunc("/forms", srv.createForm).Methods("POST")
	api.HandleFunc("/forms/{name}", srv.getForm).Methods("GET")
	api.HandleFunc("/forms/{name}", srv.deleteForm).Methods("DELETE")
	api.HandleFunc("/forms/{name}/lock", srv.lockForm).Methods("PUT")

	api.HandleFunc("/forms/{name}/fields", srv.addField).Methods("POST")
	api.HandleFunc("/forms/{name}/fields/{field:[0-9]+}", srv.updateField).Methods("PUT")
	api.HandleFunc("/forms/{name}/fields/{field:[0-9]+}", srv.removeField).Methods("DELETE")
	api.HandleFunc("/forms/{name}/fields/{field:[0-9]+}/localizations", srv.listLocalizations).Methods("GET")
	api.HandleFunc("/forms/{name}/fields/{field:[0-9]+}/localizations/{locale}", srv.setLocalization).Methods("PUT")

	api.HandleFunc("/forms/{name}/layout", srv.getLayout).Methods("GET")
	api.HandleFunc("/forms/{name}/layout", srv.saveLayout).Methods("PUT", "POST")
	api.HandleFunc("/forms/{name}/layout", srv.resetLayout).Methods("DELETE")
	api.HandleFunc("/forms/{name}/plan", srv.getPlan).Methods("GET")
	api.HandleFunc("/forms/{name}/answers/default", srv.defaultAnswers).Methods("GET")

	api.HandleFunc("/forms/{name}/submissions", srv.listSubmissions).Methods("GET")
	api.HandleFunc("/forms/{name}/submissions", srv.submitAnswers).Methods("POST")
	api.HandleFunc("/submissions/{id:[0-9]+}", srv.getSubmission).Methods("GET")

	api.HandleFunc("/forms/{name}/drafts", srv.createDraft).Methods("POST")
	api.HandleFunc("/drafts/{id}", srv.getDraft).Methods("GET")
	api.HandleFunc("/drafts/{id}/answers", srv.clearDraft).Methods("DELETE")
	api.HandleFunc("/drafts/{id}/answers/{field:[0-9]+}", srv.setDraftAnswer).Methods("PUT")
	api.HandleFunc("/drafts/{id}/answers/{field:[0-9]+}/toggle", srv.toggleDraftAnswer).Methods("POST")
	api.HandleFunc("/drafts/{id}/submit", srv.submitDraft).Methods("POST")
}

// apiForm loads the form named in the route.
func (srv *Service) apiForm(w http.ResponseWriter, r *http.Request) (*db.Form, bool) {
	f, err := srv.db.GetForm(r.Context(), mux.Vars(r)["name"], r.URL.Query().Get("locale"))
	if err != nil {
		srv.fail(w, r, err)
		return nil, false
	}
	return f, true
}

func routeID(r *http.Request, key string) int64 {
	// the route pattern only admits digits
	id, _ := strconv.ParseInt(mux.Vars(r)[key], 10, 64)
	return id
}

func (srv *Service) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		srv.web.ErrorResponse(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (srv *Service) listForms(w http.ResponseWriter, r *http.Request) {
	forms, err := srv.db.ListForms(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.web.JSON(w, r, http.StatusOK, forms)
}

func (srv *Service) createForm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !srv.decode(w, r, &body) {
		return
	}
	f, err := srv.db.CreateForm(r.Context(), body.Name, body.Description)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.web.JSON(w, r, http.StatusCreated, f)
}

func (srv *Service) getForm(w http.ResponseWriter, r *http.Request) {
	if f, ok := srv.apiForm(w, r); ok {
		srv.web.JSON(w, r, http.StatusOK, f)
	}
}

func (srv *Service) deleteForm(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	if err := srv.db.DeleteForm(r.Context(), f.ID); err != nil {
		srv.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Service) lockForm(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	var body struct {
		Locked bool `json:"locked"`
	}
	if !srv.decode(w, r, &body) {
		return
	}
	if err := srv.db.SetLocked(r.Context(), f.ID, body.Locked); err != nil {
		srv.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Service) addField(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	var spec form.Spec
	if !srv.decode(w, r, &spec) {
		return
	}
	field, err := srv.db.AddField(r.Context(), f.ID, spec)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.web.JSON(w, r, http.StatusCreated, field)
}

func (srv *Service) updateField(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	var spec form.Spec
	if !srv.decode(w, r, &spec) {
		return
	}
	field, err := srv.db.UpdateField(r.Context(), f.ID, routeID(r, "field"), spec)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.web.JSON(w, r, http.StatusOK, field)
}

func (srv *Service) removeField(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	if err := srv.db.RemoveField(r.Context(), f.ID, routeID(r, "field")); err != nil {
		srv.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Service) listLocalizations(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	fieldID := routeID(r, "field")
	if _, ok := f.Field(fieldID); !ok {
		srv.web.ErrorResponse(w, r, http.StatusNotFound, "no such field")
		return
	}
	locs, err := srv.db.Localizations(r.Context(), fieldID)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.web.JSON(w, r, http.StatusOK, locs)
}

func (srv *Service) setLocalization(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	var loc form.Localization
	if !srv.decode(w, r, &loc) {
		return
	}
	loc.Locale = mux.Vars(r)["locale"]
	if err := srv.db.SetLocalization(r.Context(), f.ID, routeID(r, "field"), loc); err != nil {
		srv.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Service) getLayout(w http.ResponseWriter, r *http.Request) {
	if f, ok := srv.apiForm(w, r); ok {
		srv.web.JSON(w, r, http.StatusOK, f.Layout)
	}
}

func (srv *Service) saveLayout(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	var l layout.Layout
	if !srv.decode(w, r, &l) {
		return
	}
	if err := srv.db.SaveLayout(r.Context(), f.ID, l); err != nil {
		srv.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Service) resetLayout(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	if err := srv.db.ResetLayout(r.Context(), f.ID); err != nil {
		srv.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Service) getPlan(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	plan, err := view.Build(f.Fields, f.Layout, nil, nil)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.web.JSON(w, r, http.StatusOK, plan)
}

func (srv *Service) defaultAnswers(w http.ResponseWriter, r *http.Request) {
	if f, ok := srv.apiForm(w, r); ok {
		srv.web.JSON(w, r, http.StatusOK, answer.Default(f.Fields))
	}
}

func (srv *Service) listSubmissions(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	submissions, err := srv.db.FormSubmissions(r.Context(), f.ID)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.web.JSON(w, r, http.StatusOK, submissions)
}

func (srv *Service) getSubmission(w http.ResponseWriter, r *http.Request) {
	s, err := srv.db.GetSubmission(r.Context(), routeID(r, "id"))
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.web.JSON(w, r, http.StatusOK, s)
}

// submit validates the answers and queues them. Validation failures are
// answered with the message of every failing field.
func (srv *Service) submit(w http.ResponseWriter, r *http.Request, f *db.Form, set *answer.Set) bool {
	schema, err := answer.BuildSchema(f.Fields)
	if err != nil {
		srv.fail(w, r, err)
		return false
	}
	if errs := schema.Validate(set); len(errs) > 0 {
		srv.web.JSON(w, r, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": errs,
		})
		return false
	}
	s := &db.Submission{FormID: f.ID, Label: f.Name, Answers: set.Records()}
	if err := srv.worker.Enqueue(r.Context(), s); err != nil {
		srv.fail(w, r, err)
		return false
	}
	srv.web.JSON(w, r, http.StatusAccepted, s)
	return true
}

func (srv *Service) submitAnswers(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	set := answer.NewSet()
	if !srv.decode(w, r, set) {
		return
	}
	srv.submit(w, r, f, set)
}

func (srv *Service) createDraft(w http.ResponseWriter, r *http.Request) {
	f, ok := srv.apiForm(w, r)
	if !ok {
		return
	}
	d := db.NewDraft(f.ID, answer.Default(f.Fields))
	if err := srv.db.InsertDraft(r.Context(), d); err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.web.JSON(w, r, http.StatusCreated, d)
}

// apiDraft loads the draft named in the route together with its form.
func (srv *Service) apiDraft(w http.ResponseWriter, r *http.Request) (*db.Draft, *db.Form, bool) {
	d, err := srv.db.GetDraft(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		srv.fail(w, r, err)
		return nil, nil, false
	}
	f, err := srv.db.GetFormByID(r.Context(), d.FormID, "")
	if err != nil {
		srv.fail(w, r, err)
		return nil, nil, false
	}
	return d, f, true
}

func (srv *Service) getDraft(w http.ResponseWriter, r *http.Request) {
	if d, _, ok := srv.apiDraft(w, r); ok {
		srv.web.JSON(w, r, http.StatusOK, d)
	}
}

// storeDraftAnswer saves the draft and reports the validation message of
// the changed field along with the draft.
func (srv *Service) storeDraftAnswer(w http.ResponseWriter, r *http.Request, d *db.Draft, f *db.Form, set *answer.Set, fieldID int64) {
	schema, err := answer.BuildSchema(f.Fields)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	d.SetAnswers(set)
	d.ClearToken = ""
	if err := srv.db.UpdateDraft(r.Context(), d); err != nil {
		srv.fail(w, r, err)
		return
	}
	content, _ := set.Content(fieldID)
	srv.web.JSON(w, r, http.StatusOK, map[string]interface{}{
		"draft": d,
		"error": schema.Check(fieldID, content),
	})
}

func (srv *Service) setDraftAnswer(w http.ResponseWriter, r *http.Request) {
	d, f, ok := srv.apiDraft(w, r)
	if !ok {
		return
	}
	fieldID := routeID(r, "field")
	if _, ok := f.Field(fieldID); !ok {
		srv.web.ErrorResponse(w, r, http.StatusNotFound, "no such field")
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if !srv.decode(w, r, &body) {
		return
	}
	set := d.AnswerSet()
	set.SetContent(fieldID, body.Content)
	srv.storeDraftAnswer(w, r, d, f, set, fieldID)
}

func (srv *Service) toggleDraftAnswer(w http.ResponseWriter, r *http.Request) {
	d, f, ok := srv.apiDraft(w, r)
	if !ok {
		return
	}
	fieldID := routeID(r, "field")
	field, ok := f.Field(fieldID)
	if !ok {
		srv.web.ErrorResponse(w, r, http.StatusNotFound, "no such field")
		return
	}
	if field.Type != form.MultipleChoice {
		srv.web.ErrorResponse(w, r, http.StatusBadRequest, "only multiple choice answers can be toggled")
		return
	}
	var body struct {
		Value string `json:"value"`
	}
	if !srv.decode(w, r, &body) {
		return
	}
	value := strings.TrimSpace(body.Value)
	if strings.Contains(value, ",") || (len(field.SelectOptions) > 0 && !validChoice(field, value)) {
		srv.web.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("%q is not an option of %q", body.Value, field.Label))
		return
	}
	set := d.AnswerSet()
	set.Toggle(fieldID, value)
	srv.storeDraftAnswer(w, r, d, f, set, fieldID)
}

func validChoice(field form.Field, value string) bool {
	for _, c := range form.Choices(field) {
		if c.Value == value {
			return true
		}
	}
	return false
}

// clearDraft discards every answer of a draft. The first request only
// returns a confirmation token; the answers are cleared by a second request
// that passes it as the confirm parameter.
func (srv *Service) clearDraft(w http.ResponseWriter, r *http.Request) {
	d, f, ok := srv.apiDraft(w, r)
	if !ok {
		return
	}
	confirm := r.URL.Query().Get("confirm")
	switch {
	case confirm == "":
		d.ClearToken = uuid.New().String()
		if err := srv.db.UpdateDraft(r.Context(), d); err != nil {
			srv.fail(w, r, err)
			return
		}
		srv.web.JSON(w, r, http.StatusAccepted, map[string]string{"confirm": d.ClearToken})
	case d.ClearToken == "" || confirm != d.ClearToken:
		srv.web.ErrorResponse(w, r, http.StatusConflict, "clear was not requested or the confirmation does not match")
	default:
		d.SetAnswers(answer.Clear(f.Fields))
		d.ClearToken = ""
		if err := srv.db.UpdateDraft(r.Context(), d); err != nil {
			srv.fail(w, r, err)
			return
		}
		srv.web.JSON(w, r, http.StatusOK, d)
	}
}

func (srv *Service) submitDraft(w http.ResponseWriter, r *http.Request) {
	d, f, ok := srv.apiDraft(w, r)
	if !ok {
		return
	}
	if srv.submit(w, r, f, d.AnswerSet()) {
		if err := srv.db.DeleteDraft(r.Context(), d.ID); err != nil {
			srv.log.WithError(err).WithField("draft", d.ID).Warn("Failed to delete submitted draft")
		}
	}
}

package update

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/http/decode"
	"github.com/supplychain-resilience/scr/internal/http/html"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/resource"
	"github.com/supplychain-resilience/scr/internal/supplychain"
)

// csrfField is the name of the hidden anti-forgery input on every form.
const csrfField = "csrfmiddlewaretoken"

//go:embed templates
var templatesFS embed.FS

var pages = func() *html.Templates {
	t, err := html.ParseTemplates(templatesFS, "templates/*.tmpl")
	if err != nil {
		panic(err.Error())
	}
	return t
}()

type (
	// webHandlers provides handlers for the wizard and supply chain pages
	webHandlers struct {
		logr.Logger

		svc webService
	}

	webService interface {
		Home(ctx context.Context, opts resource.PageOptions) (*Home, error)
		TaskList(ctx context.Context, supplyChainSlug string) (*TaskList, error)
		SupplyChainSummary(ctx context.Context, opts resource.PageOptions) (*resource.Page[*supplychain.SupplyChain], error)
		StrategicActions(ctx context.Context, supplyChainSlug string, opts resource.PageOptions) (*ActionList, error)
		Completion(ctx context.Context, supplyChainSlug string) (*Completion, error)
		Start(ctx context.Context, supplyChainSlug, actionSlug string) (*MonthlyUpdate, error)
		GetWizard(ctx context.Context, supplyChainSlug, actionSlug, monthSlug string) (*Wizard, error)
		SubmitStep(ctx context.Context, updateID resource.ID, step StepID, raw map[string]string) (StepID, *ValidationErrors, error)
		Step(id StepID) (*Step, bool)
		summarize(answers map[StepID]Answers, wctx Context) []SummarySection
	}

	// wizardParams are the route variables identifying an update.
	wizardParams struct {
		SupplyChain string `schema:"supply_chain,required"`
		Action      string `schema:"action,required"`
		Month       string `schema:"month"`
	}
)

func (h *webHandlers) addHandlers(r *mux.Router) {
	r.HandleFunc("/", h.home).Methods("GET")
	r.HandleFunc("/summary/", h.supplyChainSummary).Methods("GET")

	updates := r.PathPrefix("/{supply_chain}/{action}/updates").Subrouter()
	updates.HandleFunc("/start/", h.start).Methods("GET")
	updates.HandleFunc("/{month}/{step:info|timing|delivery-status|revised-timing}/", h.getStep).Methods("GET")
	updates.HandleFunc("/{month}/{step:info|timing|delivery-status|revised-timing}/", h.postStep).Methods("POST")
	updates.HandleFunc("/{month}/confirm/", h.getConfirm).Methods("GET")
	updates.HandleFunc("/{month}/confirm/", h.postConfirm).Methods("POST")
	updates.HandleFunc("/{month}/review/", h.review).Methods("GET")

	r.HandleFunc("/{supply_chain}/summary/", h.supplyChainSummary).Methods("GET")
	r.HandleFunc("/{supply_chain}/strategic-actions/", h.strategicActions).Methods("GET")
	r.HandleFunc("/{supply_chain}/complete/", h.complete).Methods("GET")
	r.HandleFunc("/{supply_chain}/", h.taskList).Methods("GET")
}

func (h *webHandlers) home(w http.ResponseWriter, r *http.Request) {
	var opts resource.PageOptions
	if err := decode.Query(&opts, r.URL.Query()); err != nil {
		html.Error(r, w, err)
		return
	}
	home, err := h.svc.Home(r.Context(), opts)
	if err != nil {
		html.Error(r, w, err)
		return
	}
	html.Render(pages.Page("home.tmpl", struct {
		html.SitePage
		*Home
	}{
		SitePage: html.NewSitePage(r, fmt.Sprintf("Home - %s", html.ServiceName)),
		Home:     home,
	}), w, r)
}

func (h *webHandlers) taskList(w http.ResponseWriter, r *http.Request) {
	slug, err := decode.Param("supply_chain", r)
	if err != nil {
		html.Error(r, w, err)
		return
	}
	list, err := h.svc.TaskList(r.Context(), slug)
	if err != nil {
		html.Error(r, w, err)
		return
	}
	html.Render(pages.Page("tasklist.tmpl", struct {
		html.SitePage
		*TaskList
	}{
		SitePage: html.NewSitePage(r, fmt.Sprintf("%s task list - %s", list.SupplyChain.Name, html.ServiceName)),
		TaskList: list,
	}), w, r)
}

func (h *webHandlers) supplyChainSummary(w http.ResponseWriter, r *http.Request) {
	var opts resource.PageOptions
	if err := decode.Query(&opts, r.URL.Query()); err != nil {
		html.Error(r, w, err)
		return
	}
	chains, err := h.svc.SupplyChainSummary(r.Context(), opts)
	if err != nil {
		html.Error(r, w, err)
		return
	}
	html.Render(pages.Page("summary.tmpl", struct {
		html.SitePage
		SupplyChains *resource.Page[*supplychain.SupplyChain]
	}{
		SitePage:     html.NewSitePage(r, fmt.Sprintf("Supply chain summary - %s", html.ServiceName)),
		SupplyChains: chains,
	}), w, r)
}

func (h *webHandlers) strategicActions(w http.ResponseWriter, r *http.Request) {
	slug, err := decode.Param("supply_chain", r)
	if err != nil {
		html.Error(r, w, err)
		return
	}
	var opts resource.PageOptions
	if err := decode.Query(&opts, r.URL.Query()); err != nil {
		html.Error(r, w, err)
		return
	}
	list, err := h.svc.StrategicActions(r.Context(), slug, opts)
	if err != nil {
		html.Error(r, w, err)
		return
	}
	html.Render(pages.Page("actions.tmpl", struct {
		html.SitePage
		*ActionList
	}{
		SitePage:   html.NewSitePage(r, fmt.Sprintf("%s strategic actions - %s", list.SupplyChain.Name, html.ServiceName)),
		ActionList: list,
	}), w, r)
}

func (h *webHandlers) complete(w http.ResponseWriter, r *http.Request) {
	slug, err := decode.Param("supply_chain", r)
	if err != nil {
		html.Error(r, w, err)
		return
	}
	completion, err := h.svc.Completion(r.Context(), slug)
	if errors.Is(err, ErrUpdatesIncomplete) {
		http.Redirect(w, r, TaskListPath(slug), http.StatusFound)
		return
	} else if err != nil {
		html.Error(r, w, err)
		return
	}
	html.Render(pages.Page("complete.tmpl", struct {
		html.SitePage
		*Completion
	}{
		SitePage:   html.NewSitePage(r, fmt.Sprintf("%s updated - %s", completion.SupplyChain.Name, html.ServiceName)),
		Completion: completion,
	}), w, r)
}

func (h *webHandlers) start(w http.ResponseWriter, r *http.Request) {
	var params wizardParams
	if err := decode.Route(&params, r); err != nil {
		html.Error(r, w, err)
		return
	}
	update, err := h.svc.Start(r.Context(), params.SupplyChain, params.Action)
	if err != nil {
		html.Error(r, w, err)
		return
	}
	if update.IsSubmitted() {
		http.Redirect(w, r, ReviewPath(params.SupplyChain, params.Action, update.MonthSlug), http.StatusFound)
		return
	}
	http.Redirect(w, r, StepPath(params.SupplyChain, params.Action, update.MonthSlug, Info), http.StatusFound)
}

// loadWizard retrieves the wizard for the requested update, writing an error
// or redirect to the response if it cannot be edited.
func (h *webHandlers) loadWizard(w http.ResponseWriter, r *http.Request) (*Wizard, bool) {
	var params wizardParams
	if err := decode.Route(&params, r); err != nil {
		html.Error(r, w, err)
		return nil, false
	}
	wiz, err := h.svc.GetWizard(r.Context(), params.SupplyChain, params.Action, params.Month)
	if err != nil {
		html.Error(r, w, err)
		return nil, false
	}
	if wiz.Update.IsSubmitted() {
		http.Redirect(w, r, wiz.reviewURL(), http.StatusFound)
		return nil, false
	}
	return wiz, true
}

func (h *webHandlers) getStep(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.loadWizard(w, r)
	if !ok {
		return
	}
	step, ok := h.stepOnPath(w, r, wiz)
	if !ok {
		return
	}
	h.renderStep(w, r, wiz, step, wiz.Answers[step.ID], nil)
}

func (h *webHandlers) postStep(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.loadWizard(w, r)
	if !ok {
		return
	}
	step, ok := h.stepOnPath(w, r, wiz)
	if !ok {
		return
	}
	raw, err := decode.FlatForm(r, csrfField)
	if err != nil {
		html.Error(r, w, err)
		return
	}
	next, verrs, err := h.svc.SubmitStep(r.Context(), wiz.Update.ID, step.ID, raw)
	if !h.handleSubmitError(w, r, wiz, err) {
		return
	}
	if verrs != nil {
		h.renderStep(w, r, wiz, step, raw, verrs)
		return
	}
	http.Redirect(w, r, wiz.StepURL(next), http.StatusFound)
}

// handleSubmitError writes a response for the error, returning true if there
// is no error to handle.
func (h *webHandlers) handleSubmitError(w http.ResponseWriter, r *http.Request, wiz *Wizard, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrUpdateSubmitted):
		http.Redirect(w, r, wiz.reviewURL(), http.StatusFound)
	case errors.Is(err, ErrStepNotAvailable):
		html.Error(r, w, internal.ErrResourceNotFound)
	default:
		html.Error(r, w, err)
	}
	return false
}

// stepOnPath retrieves the requested step, rendering not found if the step is
// not on the update's path.
func (h *webHandlers) stepOnPath(w http.ResponseWriter, r *http.Request, wiz *Wizard) (*Step, bool) {
	id := StepID(mux.Vars(r)["step"])
	step, ok := h.svc.Step(id)
	if !ok || !wiz.onPath(id) {
		html.Error(r, w, internal.ErrResourceNotFound)
		return nil, false
	}
	return step, true
}

func (h *webHandlers) renderStep(w http.ResponseWriter, r *http.Request, wiz *Wizard, step *Step, values map[string]string, verrs *ValidationErrors) {
	html.Render(pages.Page("step.tmpl", stepPage{
		SitePage: html.NewSitePage(r, wiz.title(step)),
		Wizard:   wiz,
		Step:     step,
		Values:   values,
		Errors:   verrs,
	}), w, r)
}

func (h *webHandlers) getConfirm(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.loadWizard(w, r)
	if !ok {
		return
	}
	h.renderConfirm(w, r, wiz, nil)
}

func (h *webHandlers) postConfirm(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.loadWizard(w, r)
	if !ok {
		return
	}
	_, verrs, err := h.svc.SubmitStep(r.Context(), wiz.Update.ID, Confirm, nil)
	if !h.handleSubmitError(w, r, wiz, err) {
		return
	}
	if verrs != nil {
		h.renderConfirm(w, r, wiz, verrs)
		return
	}
	html.FlashSuccess(w, fmt.Sprintf("Update submitted for %s", wiz.Action.Name))

	next := TaskListPath(wiz.SupplyChain.Slug)
	if _, err := h.svc.Completion(r.Context(), wiz.SupplyChain.Slug); err == nil {
		next = CompletePath(wiz.SupplyChain.Slug)
	} else if !errors.Is(err, ErrUpdatesIncomplete) {
		h.Error(err, "checking supply chain completion", "supply_chain", wiz.SupplyChain.Slug)
	}
	http.Redirect(w, r, next, http.StatusFound)
}

func (h *webHandlers) renderConfirm(w http.ResponseWriter, r *http.Request, wiz *Wizard, verrs *ValidationErrors) {
	step, _ := h.svc.Step(Confirm)
	if verrs != nil {
		// each error is an incomplete step
		for i, fe := range verrs.Errors {
			verrs.Errors[i].URL = wiz.StepURL(StepID(fe.Field))
		}
	}
	html.Render(pages.Page("confirm.tmpl", confirmPage{
		SitePage: html.NewSitePage(r, wiz.title(step)),
		Wizard:   wiz,
		Step:     step,
		Sections: h.svc.summarize(wiz.Answers, wiz.Context),
		Errors:   verrs,
	}), w, r)
}

func (h *webHandlers) review(w http.ResponseWriter, r *http.Request) {
	var params wizardParams
	if err := decode.Route(&params, r); err != nil {
		html.Error(r, w, err)
		return
	}
	wiz, err := h.svc.GetWizard(r.Context(), params.SupplyChain, params.Action, params.Month)
	if err != nil {
		html.Error(r, w, err)
		return
	}
	if !wiz.Update.IsSubmitted() {
		http.Redirect(w, r, wiz.StepURL(Info), http.StatusFound)
		return
	}
	html.Render(pages.Page("review.tmpl", struct {
		html.SitePage
		*Wizard
		Rows []SummaryRow
	}{
		SitePage: html.NewSitePage(r, fmt.Sprintf("Current monthly update - %s update – %s – %s",
			wiz.Action.Name, wiz.SupplyChain.Name, html.ServiceName)),
		Wizard: wiz,
		Rows:   reviewRows(wiz.Update),
	}), w, r)
}

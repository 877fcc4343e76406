package html

import (
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/authz"
)

// SitePage contains data shared by all pages when rendering templates.
type SitePage struct {
	Title   string // page title
	Version string // scr version string in footer

	request *http.Request // current request
}

func NewSitePage(r *http.Request, title string) SitePage {
	return SitePage{
		Title:   title,
		Version: internal.Version,
		request: r,
	}
}

func (v SitePage) CurrentUser() string {
	subject, err := authz.SubjectFromContext(v.request.Context())
	if err != nil {
		return ""
	}
	return subject.String()
}

func (v SitePage) CurrentPath() string {
	return v.request.URL.Path
}

// CSRFField is the hidden anti-forgery input every form must carry.
func (v SitePage) CSRFField() template.HTML {
	return csrf.TemplateField(v.request)
}

func (v SitePage) Flashes() []Flash {
	return readFlashes(v.request)
}

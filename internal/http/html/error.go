package html

import (
	"errors"
	"net/http"

	"github.com/supplychain-resilience/scr/internal"
)

type errorPage struct {
	SitePage

	Heading string
	Message string
}

// Error renders an error page appropriate to err. Errors the user can do
// nothing about are reported with a generic message; the caller is expected
// to have logged the detail.
func Error(r *http.Request, w http.ResponseWriter, err error) {
	var (
		code    int
		heading string
		message string
		missing *internal.MissingParameterError
	)
	switch {
	case errors.Is(err, internal.ErrResourceNotFound):
		code = http.StatusNotFound
		heading = "Page not found"
		message = "If you typed the web address, check it is correct."
	case errors.Is(err, internal.ErrAccessNotPermitted):
		code = http.StatusForbidden
		heading = "Access denied"
		message = "You do not have permission to access this page."
	case errors.Is(err, internal.ErrUnauthorized):
		code = http.StatusUnauthorized
		heading = "Sign in required"
		message = "You need to sign in to use this service."
	case errors.As(err, &missing):
		code = http.StatusUnprocessableEntity
		heading = "Sorry, there is a problem with your request"
		message = err.Error()
	default:
		code = http.StatusInternalServerError
		heading = "Sorry, there is a problem with the service"
		message = "Try again later."
	}
	page := errorPage{
		SitePage: NewSitePage(r, heading+" - "+ServiceName),
		Heading:  heading,
		Message:  message,
	}
	RenderWithStatus(layoutTemplates.Page("error.tmpl", page), code, w, r)
}

// NotFound renders the not found page.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Error(r, w, internal.ErrResourceNotFound)
}

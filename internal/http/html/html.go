// Package html contains code relating specifically to the web UI.
package html

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
)

// ServiceName appears in the header and at the end of every page title.
const ServiceName = "Update supply chain information"

// MarkdownToHTML renders user supplied markdown. Raw HTML is dropped and only
// links with safe protocols are kept.
func MarkdownToHTML(md string) template.HTML {
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.Safelink,
	})
	return template.HTML(markdown.ToHTML([]byte(md), nil, renderer))
}

// SetCookie sets a cookie on the http response. A nil expiry makes it a
// session cookie; a zero expiry deletes it.
func SetCookie(w http.ResponseWriter, name, value string, expiry *time.Time) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if expiry != nil {
		if expiry.IsZero() {
			// Purge cookie from browser.
			cookie.Expires = time.Unix(1, 0)
			cookie.MaxAge = -1
		} else {
			cookie.Expires = *expiry
		}
	}
	http.SetCookie(w, cookie)
}

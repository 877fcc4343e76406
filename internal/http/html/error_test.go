package html

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplychain-resilience/scr/internal"
)

func TestError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantHeading string
	}{
		{"not found", internal.ErrResourceNotFound, 404, "Page not found"},
		{"wrapped not found", fmt.Errorf("retrieving update: %w", internal.ErrResourceNotFound), 404, "Page not found"},
		{"access denied", internal.ErrAccessNotPermitted, 403, "Access denied"},
		{"unauthorized", internal.ErrUnauthorized, 401, "Sign in required"},
		{"missing parameter", &internal.MissingParameterError{Parameter: "month"}, 422, "Sorry, there is a problem with your request"},
		{"other", errors.New("connection refused"), 500, "Sorry, there is a problem with the service"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/medicines/", nil)
			w := httptest.NewRecorder()
			Error(r, w, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			doc, err := htmlquery.Parse(w.Body)
			require.NoError(t, err)
			h1 := htmlquery.FindOne(doc, "//h1")
			require.NotNil(t, h1)
			assert.Equal(t, tt.wantHeading, htmlquery.InnerText(h1))
			title := htmlquery.FindOne(doc, "//title")
			assert.Equal(t, tt.wantHeading+" - "+ServiceName, htmlquery.InnerText(title))
			// internal detail is never leaked
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}

	t.Run("access denied message", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/medicines/", nil)
		w := httptest.NewRecorder()
		Error(r, w, internal.ErrAccessNotPermitted)
		assert.Contains(t, w.Body.String(), "You do not have permission to access this page.")
	})
}

func TestFlash(t *testing.T) {
	w := httptest.NewRecorder()
	FlashSuccess(w, "Update submitted")

	r := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	assert.Equal(t, []Flash{{Type: FlashSuccessType, Message: "Update submitted"}}, readFlashes(r))

	t.Run("rendering purges flash cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		Error(r, w, internal.ErrResourceNotFound)
		assert.Contains(t, w.Body.String(), "Update submitted")
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, flashCookie, cookies[0].Name)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}

// Package decode contains decoders for various HTTP artefacts
package decode

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/supplychain-resilience/scr/internal"
)

// Query schema decoder: caches structs, and safe for sharing.
var decoder *schema.Decoder

func init() {
	decoder = schema.NewDecoder()
	// Don't error if there are keys in the source map that are not present in
	// the destination struct, e.g. the csrf token.
	decoder.IgnoreUnknownKeys(true)
}

// Query unmarshals a query string (k1=v1&k2=v2...) into dst.
func Query(dst any, query url.Values) error {
	return decode(dst, query)
}

// Route decodes a mux route parameters (e.g. /foo/{bar}) into dst.
func Route(dst any, r *http.Request) error {
	// decoder only takes map[string][]string, not map[string]string
	vars := convertStrMapToStrSliceMap(mux.Vars(r))
	return decode(dst, vars)
}

// All populates the struct pointed to by dst with query params, req body params
// and request path variables, respectively, with path variables taking
// precedence over body params, and body params over query params.
func All(dst any, r *http.Request) error {
	// Parses both query and req body if POST/PUT/PATCH
	if err := r.ParseForm(); err != nil {
		return err
	}
	vars := make(map[string][]string, len(r.Form))
	for k, v := range r.Form {
		vars[k] = v
	}
	// Merge in request path variables
	for k, v := range mux.Vars(r) {
		vars[k] = []string{v}
	}
	return decode(dst, vars)
}

// Param retrieves a single parameter by name from the request, first checking the body
// (if POST/PUT/PATCH) and the query, falling back to looking for a path variable.
func Param(name string, r *http.Request) (string, error) {
	// Parses both query and req body
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	if v := r.Form.Get(name); v != "" {
		return v, nil
	}
	if v, ok := mux.Vars(r)[name]; ok {
		return v, nil
	}
	return "", &internal.MissingParameterError{Parameter: name}
}

// FlatForm returns the POST form as a flat map of the first value of each
// key, skipping the given keys. Leading and trailing whitespace is retained;
// trimming is left to validation.
func FlatForm(r *http.Request, skip ...string) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	m := make(map[string]string, len(r.PostForm))
outer:
	for k, v := range r.PostForm {
		for _, s := range skip {
			if strings.EqualFold(k, s) {
				continue outer
			}
		}
		if len(v) > 0 {
			m[k] = v[0]
		}
	}
	return m, nil
}

func decode(dst any, src map[string][]string) error {
	if err := decoder.Decode(dst, src); err != nil {
		var emptyField schema.EmptyFieldError
		if errors.As(err, &emptyField) {
			return &internal.MissingParameterError{Parameter: emptyField.Key}
		}
		return err
	}
	return nil
}

func convertStrMapToStrSliceMap(m map[string]string) map[string][]string {
	mm := make(map[string][]string, len(m))
	for k, v := range m {
		mm[k] = []string{v}
	}
	return mm
}

package html

import (
	"fmt"
	"html/template"
	"net/url"
	"reflect"
	"time"

	"github.com/supplychain-resilience/scr/internal/deadline"
	"github.com/supplychain-resilience/scr/internal/resource"
)

func funcs() template.FuncMap {
	return template.FuncMap{
		"asset":          func(path string) (string, error) { return AssetsFS.Path(path) },
		"attrIf":         attrIf,
		"checked":        checked,
		"selected":       selected,
		"formatDate":     formatDate,
		"formatDeadline": deadline.Format,
		"markdown":       MarkdownToHTML,
		"mergeQuery":     mergeQuery,
		"prevPageQuery":  prevPageQuery,
		"nextPageQuery":  nextPageQuery,
		"inc":            func(i int) int { return i + 1 },
		"dict":           dict,
	}
}

// formatDate renders a date the way GOV.UK pages do, e.g. 14 November 2026.
func formatDate(t any) string {
	switch v := t.(type) {
	case time.Time:
		return v.Format("2 January 2006")
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format("2 January 2006")
	}
	return ""
}

// mergeQuery merges the query string into the given url, replacing any existing
// query parameters with the same name.
func mergeQuery(u string, q string) (string, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return "", err
	}
	mergeQuery, err := url.ParseQuery(q)
	if err != nil {
		return "", err
	}
	existingQuery := parsedURL.Query()
	for k, v := range mergeQuery {
		existingQuery.Set(k, v[0])
	}
	parsedURL.RawQuery = existingQuery.Encode()
	return parsedURL.String(), nil
}

func prevPageQuery(p *resource.Pagination) string {
	if p == nil || p.PreviousPage == nil {
		return ""
	}
	return fmt.Sprintf("page=%d", *p.PreviousPage)
}

func nextPageQuery(p *resource.Pagination) string {
	if p == nil || p.NextPage == nil {
		return ""
	}
	return fmt.Sprintf("page=%d", *p.NextPage)
}

func selected(arg any, args ...any) (template.HTMLAttr, error) {
	return attrIf("selected", arg, args...)
}

func checked(arg any, args ...any) (template.HTMLAttr, error) {
	return attrIf("checked", arg, args...)
}

// attrIf returns string as an html attribute, if:
// (a) single arg provided, it is a boolean, and it is true.
// (b) multiple args provided, they are all strings, and they are all equal.
// otherwise it outputs an empty attribute
// This is useful for printing strings in templates or not.
func attrIf(s string, arg any, args ...any) (template.HTMLAttr, error) {
	if len(args) == 0 {
		if reflect.ValueOf(arg).Kind() == reflect.Bool {
			if reflect.ValueOf(arg).Bool() {
				return template.HTMLAttr(s), nil
			}
		}
		return "", nil
	}
	if reflect.ValueOf(arg).Kind() != reflect.String {
		return "", nil
	}
	lastarg := reflect.ValueOf(arg).String()
	for _, a := range args {
		if reflect.ValueOf(a).Kind() != reflect.String {
			return "", nil
		}
		if reflect.ValueOf(a).String() != lastarg {
			return "", nil
		}
	}
	return template.HTMLAttr(s), nil
}

// dict builds a map from alternating keys and values, for passing several
// values to a nested template.
func dict(kvs ...any) (map[string]any, error) {
	if len(kvs)%2 != 0 {
		return nil, fmt.Errorf("dict requires an even number of arguments")
	}
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs); i += 2 {
		k, ok := kvs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[k] = kvs[i+1]
	}
	return m, nil
}

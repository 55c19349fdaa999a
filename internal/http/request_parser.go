// Package http provides the dashboard server and its handlers.
//
// This file turns request bodies into domain values. Bodies may be
// form-encoded (plain htmx) or JSON (htmx json-enc); both go through
// RequestBodyParser.
package http

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"cashbook/internal/app"
	"cashbook/internal/core"
)

const maxFormBody = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and keeps it for Parse. Query
// parameters are merged in, since htmx sends DELETE parameters in the URL.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
		formData:    r.URL.Query(),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxFormBody))
	}
	return p
}

// Parse decodes the body as JSON when it looks like JSON, as a form otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	form, err := url.ParseQuery(string(p.body))
	if err != nil {
		p.err = err
		return err
	}
	for k, v := range form {
		p.formData[k] = v
	}
	return nil
}

// Get returns a sanitized, trimmed value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	return sanitizeInput(p.formData.Get(key))
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseTransaction builds a transaction from the add/edit form fields.
// Every failure is an *app.ValidationError.
func parseTransaction(get func(string) string) (core.Transaction, error) {
	amount, err := core.ParseAmount(get("amount"))
	if err != nil {
		return core.Transaction{}, &app.ValidationError{Err: err}
	}
	typ, err := core.ParseTxType(get("type"))
	if err != nil {
		return core.Transaction{}, &app.ValidationError{Err: err}
	}
	date, err := core.ParseDate(get("date"))
	if err != nil {
		return core.Transaction{}, &app.ValidationError{Err: err}
	}
	t := core.Transaction{
		Description: get("description"),
		Amount:      amount,
		Type:        typ,
		Category:    get("category"),
		Date:        date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, &app.ValidationError{Err: err}
	}
	return t, nil
}

// parseQuery reads the sort, filter and search controls.
func parseQuery(get func(string) string) core.Query {
	return core.Query{
		Category: get("filter"),
		Search:   get("search"),
		Sort:     core.ParseSortMode(get("sort")),
	}
}

// parseConfirmed reports whether the user confirmed a destructive action.
func parseConfirmed(get func(string) string) bool {
	ok, _ := strconv.ParseBool(get("confirmed"))
	return ok
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

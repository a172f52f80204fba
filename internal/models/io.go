// Package models provides the core data structures for handling webhook requests and responses.
package models

import "strings"

// Request represents an incoming client request. Header names are lower-cased.
type Request struct {
	Method  string
	Body    string
	Headers map[string]string
	Query   map[string]string
}

// Header returns the value of the named header, ignoring case.
func (r Request) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Response defines the structure for an HTTP response containing a body, headers, and a status code.
type Response struct {
	Body       string
	Headers    map[string]string
	StatusCode int
}

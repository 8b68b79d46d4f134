package header

import (
	"strconv"
	"strings"
)

// Reserved keys carried alongside the lowercase response fields.
const (
	ResultCode        = "http_result_code"
	ResultDescription = "http_result_description"
	Redirected        = "http_redirected"
)

// NoStatus is the result code kept when no status line was ever observed.
const NoStatus = "000"

// redirectCodes are the status codes after which another hop follows.
var redirectCodes = map[string]struct{}{
	"301": {}, "302": {}, "303": {}, "307": {}, "308": {},
}

// Map is the parsed header block of the final hop of a request.
// Field names are lowercase; the reserved keys hold status information.
type Map map[string]string

// New returns an empty Map holding the sentinel status.
func New() Map {
	m := Map{}
	m.Clear()
	return m
}

// Clear drops every field except http_redirected and resets the status.
func (m Map) Clear() {
	redirected, ok := m[Redirected]
	for k := range m {
		delete(m, k)
	}
	m[ResultCode] = NoStatus
	m[ResultDescription] = ""
	if ok && redirected != "" {
		m[Redirected] = redirected
	}
}

// SetStatus records the status code and description of the current hop.
func (m Map) SetStatus(code, description string) {
	m[ResultCode] = code
	m[ResultDescription] = description
}

// Set stores a field under its lowercase name.
func (m Map) Set(name, value string) {
	m[strings.ToLower(name)] = value
}

// Code returns the numeric status code, or 0 when absent or malformed.
func (m Map) Code() int {
	n, err := strconv.Atoi(m[ResultCode])
	if err != nil {
		return 0
	}
	return n
}

// IsRedirect reports whether the current hop ended with a redirect status.
func (m Map) IsRedirect() bool {
	_, ok := redirectCodes[m[ResultCode]]
	return ok
}

// EndHop closes the current hop. A redirect remembers its location and
// discards everything else so the next hop starts from a fresh map.
// It returns true when the map was reset.
func (m Map) EndHop() bool {
	if !m.IsRedirect() {
		return false
	}
	if loc, ok := m["location"]; ok {
		m[Redirected] = loc
	} else {
		delete(m, Redirected)
	}
	m.Clear()
	return true
}

// Successful reports whether the status falls in the 1xx, 2xx or 3xx class.
func (m Map) Successful() bool {
	code := m.Code()
	return code >= 100 && code < 400
}

// Fields returns a copy without the reserved keys.
func (m Map) Fields() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch k {
		case ResultCode, ResultDescription, Redirected:
			continue
		}
		out[k] = v
	}
	return out
}

package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NetworkError reports a request that never produced an HTTP response:
// connection refused, DNS failure, timeout or cancellation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError reports a non-2xx response. Body holds the raw response payload.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	if msg := e.APIMessage(); msg != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, msg)
	}
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, body)
}

// APIMessage extracts the human readable message from an error payload.
// It understands {"error": "..."}, {"message": "..."} and {"status": {"message": "..."}}.
func (e *HTTPError) APIMessage() string {
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
		Status  struct {
			Message string `json:"message"`
		} `json:"status"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Error.(string); ok && s != "" {
		return s
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Status.Message
}

// FieldErrors decodes a field-error map such as {"title": ["can't be blank"]}.
// Envelope keys (error, message, status) are ignored. Returns nil when the body
// is not a field-error map.
func (e *HTTPError) FieldErrors() map[string][]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &raw); err != nil {
		return nil
	}

	fields := make(map[string][]string)
	for field, value := range raw {
		switch field {
		case "error", "message", "status":
			continue
		}

		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			if len(list) > 0 {
				fields[field] = list
			}
			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil && single != "" {
			fields[field] = []string{single}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ValidationError reports input the API (or the client, before sending) refused.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if msgs := e.Messages(); len(msgs) > 0 {
		return strings.Join(msgs, "; ")
	}
	return "validation failed"
}

// Messages flattens field errors into "field message" strings, ordered by field.
func (e *ValidationError) Messages() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		for _, msg := range e.Fields[name] {
			out = append(out, name+" "+msg)
		}
	}
	return out
}

// ProtocolError reports a well-formed HTTP exchange whose payload lacks
// fields the client depends on.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an HTTPError.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// asValidation converts an HTTPError carrying field errors into a ValidationError.
// Other errors are returned unchanged.
func asValidation(err error) error {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	fields := httpErr.FieldErrors()
	msg := httpErr.APIMessage()
	if fields == nil && msg == "" {
		return err
	}
	return &ValidationError{Message: msg, Fields: fields}
}

package museum

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkordes/museo-companion/internal/domain"
)

// ErrorKind classifies a backend failure. Callers branch on the kind rather
// than on message text.
type ErrorKind string

const (
	KindUnknown          ErrorKind = "unknown"
	KindNotFound         ErrorKind = "not_found"
	KindValidation       ErrorKind = "validation"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindClosed           ErrorKind = "closed"
	KindScheduleAdjusted ErrorKind = "schedule_adjusted"
	KindUnavailable      ErrorKind = "unavailable"
)

// knownCodes maps the structured "code" values the backend may send.
var knownCodes = map[string]ErrorKind{
	"not_found":         KindNotFound,
	"validation_error":  KindValidation,
	"validation":        KindValidation,
	"unauthorized":      KindUnauthorized,
	"museum_closed":     KindClosed,
	"closed":            KindClosed,
	"insufficient_time": KindClosed,
	"schedule_adjusted": KindScheduleAdjusted,
	"time_limited":      KindScheduleAdjusted,
}

// APIError is a non-2xx response from the museum backend.
type APIError struct {
	Status  int
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("museum backend: %d %s: %s", e.Status, e.Kind, e.Message)
}

// Warning reports whether the failure should be shown as a non-blocking
// warning instead of a blocking error.
func (e *APIError) Warning() bool {
	return e.Kind == KindScheduleAdjusted
}

// Unwrap lets errors.Is match the domain sentinels for kinds that have one.
func (e *APIError) Unwrap() error {
	switch e.Kind {
	case KindNotFound:
		return domain.ErrNotFound
	case KindValidation:
		return domain.ErrValidation
	case KindUnauthorized:
		return domain.ErrUnauthenticated
	}
	return nil
}

// errorPayload covers the shapes the backend uses for errors:
//
//	{"detail": "text"}
//	{"detail": {"code": "...", "mensaje": "..."}}
//	{"detail": [{"msg": "..."}]}          (request validation)
//	{"error": {"code": "...", "message": "..."}}
type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type detailObject struct {
	Code     string `json:"code"`
	Mensaje  string `json:"mensaje"`
	Message  string `json:"message"`
	Horarios string `json:"horarios"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

// decodeError builds an APIError from a status code and raw response body.
// The kind comes from a structured code when one is present, otherwise from
// the status code alone.
func decodeError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	var p errorPayload
	if err := json.Unmarshal(body, &p); err == nil {
		switch {
		case p.Error != nil:
			e.Code, e.Message = p.Error.Code, p.Error.Message
		case len(p.Detail) > 0:
			e.Code, e.Message = parseDetail(p.Detail)
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	if kind, ok := knownCodes[e.Code]; ok {
		e.Kind = kind
	} else {
		e.Kind = kindForStatus(status)
	}
	return e
}

func parseDetail(raw json.RawMessage) (code, message string) {
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return "", text
	}
	var obj detailObject
	if json.Unmarshal(raw, &obj) == nil {
		msg := obj.Message
		if msg == "" {
			msg = obj.Mensaje
		}
		if msg == "" {
			msg = obj.Horarios
		}
		return obj.Code, msg
	}
	var items []validationItem
	if json.Unmarshal(raw, &items) == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			msgs = append(msgs, it.Msg)
		}
		return "validation_error", strings.Join(msgs, "; ")
	}
	return "", ""
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status >= 500:
		return KindUnavailable
	}
	return KindUnknown
}

package gateway

import (
	"net/http"
	"strings"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
)

// OutcomeKind classifies a completed call.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeSessionInvalidated
	OutcomeForbidden
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeSessionInvalidated:
		return "session_invalidated"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return "error"
	}
}

// Outcome is the policy verdict for one response.
type Outcome struct {
	Kind   OutcomeKind
	Status int
	Body   []byte
	Err    *domain.Error
}

// A 401 from these endpoints means bad credentials, not an expired session.
var exemptPaths = map[string]struct{}{
	"/users/login":          {},
	"/users/register":       {},
	"/admin/login":          {},
	"/admin/exists":         {},
	"/admin/register-first": {},
}

// IsExempt reports whether path is excluded from the session-invalidation rule.
func IsExempt(path string) bool {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(path, "/")
	_, ok := exemptPaths[path]
	return ok
}

// Evaluate maps a response to an Outcome. It has no side effects.
func Evaluate(path string, status int, body []byte) Outcome {
	out := Outcome{Status: status, Body: body}

	switch {
	case status >= 200 && status < 300:
		out.Kind = OutcomeSuccess
	case status == http.StatusUnauthorized && !IsExempt(path):
		out.Kind = OutcomeSessionInvalidated
		out.Err = &domain.Error{
			Code:    domain.ErrCodeUnauthorized,
			Message: domain.ErrSessionInvalidated.Message,
			Status:  status,
		}
	case status == http.StatusForbidden:
		out.Kind = OutcomeForbidden
		out.Err = &domain.Error{
			Code:    domain.ErrCodeForbidden,
			Message: transport.ExtractMessage(body, status),
			Status:  status,
		}
	default:
		out.Kind = OutcomeError
		out.Err = &domain.Error{
			Code:    codeForStatus(status),
			Message: transport.ExtractMessage(body, status),
			Status:  status,
		}
	}
	return out
}

func codeForStatus(status int) domain.ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return domain.ErrCodeUnauthorized
	case status == http.StatusNotFound:
		return domain.ErrCodeNotFound
	case status == http.StatusConflict:
		return domain.ErrCodeConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return domain.ErrCodeInvalid
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return domain.ErrCodeUnavailable
	default:
		return domain.ErrCodeInternal
	}
}

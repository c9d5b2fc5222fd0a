package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/planloop/planloop-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromDomain maps the service-layer sentinel errors onto HTTP status
// codes. Unknown errors become 500s.
func FromDomain(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return New(http.StatusForbidden, "unauthorized", err)
	case errors.Is(err, pkgerrors.ErrPurchaseRequired):
		return New(http.StatusPaymentRequired, "purchase_required", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "validation_error", err)
	default:
		return New(http.StatusInternalServerError, "internal_error", err)
	}
}

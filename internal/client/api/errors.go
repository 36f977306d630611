package api

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/taskflow/internal/client/client"
	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/netx"
)

// NetworkFailure is returned for transport errors, non-2xx statuses and
// unsuccessful envelopes.
type NetworkFailure struct {
	Method string
	Path   string
	// Status is 0 when no response arrived.
	Status  int
	Code    models.ErrorCode
	Message string
	Err     error
}

func (e *NetworkFailure) Error() string {
	where := e.Method + " " + e.Path
	switch {
	case e.Status == 0:
		return fmt.Sprintf("%s: %v", where, e.Err)
	case e.Code != "":
		return fmt.Sprintf("%s: %d %s: %s", where, e.Status, e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %d: %v", where, e.Status, e.Err)
	default:
		return fmt.Sprintf("%s: %d %s", where, e.Status, e.Message)
	}
}

func (e *NetworkFailure) Unwrap() []error {
	var errs []error
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		errs = append(errs, client.ErrUnauthorized)
	case e.Status == 0 || netx.IsGatewayStatus(e.Status):
		errs = append(errs, client.ErrUnavailable)
	}
	return errs
}

// UserMessage is the text to show for e.
func (e *NetworkFailure) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if m := e.Code.Message(); m != "" {
		return m
	}
	if e.Status == 0 {
		return "The server could not be reached."
	}
	return http.StatusText(e.Status)
}

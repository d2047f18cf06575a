// Package verify implements the verification pipeline: it sequences face and
// gesture recognition calls for one request and maps every result onto a
// single outcome taxonomy before anything reaches the HTTP layer.
package verify

import (
	"net/http"

	"github.com/horusauth/horus/internal/constants"
)

// Kind classifies a pipeline outcome.
type Kind int

const (
	// Success means every requested factor matched.
	Success Kind = iota
	// Mismatch means a factor did not match; the caller must resupply input.
	// Which factor failed is deliberately not reported.
	Mismatch
	// WorkerError means the recognition backend failed or timed out; the same
	// request may be retried unchanged.
	WorkerError
	// ValidationError means the request itself was malformed or incomplete.
	ValidationError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Mismatch:
		return "mismatch"
	case WorkerError:
		return "worker_error"
	case ValidationError:
		return "validation_error"
	}
	return "unknown"
}

// Outcome is the terminal result of one pipeline run. It is constructed once
// and never mutated; Reason is safe to show to the user, Detail is diagnostic
// and stays server-side.
type Outcome struct {
	Kind   Kind
	Reason string
	Detail string
}

func Succeeded() Outcome {
	return Outcome{Kind: Success}
}

// Mismatched returns the one generic mismatch outcome. Face and gesture
// failures share it so a caller cannot learn which factor was wrong.
func Mismatched() Outcome {
	return Outcome{Kind: Mismatch, Reason: constants.MismatchMessage}
}

func Invalid(reason string) Outcome {
	return Outcome{Kind: ValidationError, Reason: reason}
}

func Unavailable(err error) Outcome {
	out := Outcome{Kind: WorkerError, Reason: constants.UnavailableMessage}
	if err != nil {
		out.Detail = err.Error()
	}
	return out
}

// HTTPStatus maps the outcome onto a transport status code. successStatus
// lets create/edit report 201 while reads report 200.
func (o Outcome) HTTPStatus(successStatus int) int {
	switch o.Kind {
	case Success:
		return successStatus
	case Mismatch, ValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

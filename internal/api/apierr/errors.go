package apierr

import (
	"errors"
	"net/http"

	"github.com/mcoot/dicearena-go/internal/api/response"
	"github.com/mcoot/dicearena-go/internal/model"
)

// Error codes returned in the error body
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeMatchNotFound      = "MATCH_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// APIError is the body of an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error is an error that knows its HTTP status
type Error struct {
	Status int
	APIError
}

func (e *Error) Error() string {
	return e.Message
}

// domain sentinels and how they surface over HTTP
var sentinels = []struct {
	err    error
	status int
	body   APIError
}{
	{model.ErrPlayerNotFound, http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}},
	{model.ErrMatchNotFound, http.StatusNotFound, APIError{CodeMatchNotFound, "Match not found"}},
	{model.ErrInvalidPlayer, http.StatusBadRequest, APIError{CodeInvalidRequest, "Invalid player"}},
	{model.ErrCoordinatorStopped, http.StatusServiceUnavailable, APIError{CodeServiceUnavailable, "Server is shutting down"}},
}

// From classifies err. Unknown errors become a 500 that hides the cause.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return &Error{Status: s.status, APIError: s.body}
		}
	}
	return NewInternalError()
}

// WriteError writes err as a JSON error response
func WriteError(w http.ResponseWriter, err error) {
	e := From(err)
	response.JSON(w, e.Status, ErrorResponse{Error: e.APIError})
}

// NewInvalidRequestError reports a malformed request
func NewInvalidRequestError(message string) *Error {
	return &Error{Status: http.StatusBadRequest, APIError: APIError{CodeInvalidRequest, message}}
}

// NewNotFoundError reports an unknown route
func NewNotFoundError() *Error {
	return &Error{Status: http.StatusNotFound, APIError: APIError{CodeNotFound, "Not found"}}
}

// NewInternalError reports an unexpected failure
func NewInternalError() *Error {
	return &Error{Status: http.StatusInternalServerError, APIError: APIError{CodeInternalError, "Internal server error"}}
}

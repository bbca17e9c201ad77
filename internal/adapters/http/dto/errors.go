package dto

import (
	"errors"
	"net/http"

	"github.com/shyjal/goplaces/internal/domain"
)

// ErrorResponse is the wire shape of every failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MapErr converts an error into a response status and body. Errors
// that are not domain errors never leak their text to the client.
func MapErr(err error) (int, ErrorResponse) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return MapDomainErr(de)
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func MapDomainErr(err *domain.DomainError) (int, ErrorResponse) {
	switch err.Code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest, ErrorResponse{Error: err.Message}
	case domain.ErrCodeRateLimited:
		return http.StatusTooManyRequests, ErrorResponse{Error: err.Message}
	case domain.ErrCodeExternal:
		return http.StatusInternalServerError, ErrorResponse{Error: err.Message}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: err.Message}
	}
}

package domain

import (
	"fmt"
)

const (
	ErrCodeValidation  string = "VALIDATION_ERROR"
	ErrCodeInternal    string = "INTERNAL_ERROR"
	ErrCodeExternal    string = "EXTERNAL_SERVICE_ERROR"
	ErrCodeRateLimited string = "RATE_LIMITED"
)

type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"cause"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func NewDomainError(code, msg string, cause error) *DomainError {
	return &DomainError{Code: code, Message: msg, Cause: cause}
}

var ErrTooManyRequests = &DomainError{Code: ErrCodeRateLimited, Message: "too many requests, please try again later", Cause: nil}
var ErrNoImageGenerated = &DomainError{Code: ErrCodeExternal, Message: "the image service returned no image, please try again", Cause: nil}

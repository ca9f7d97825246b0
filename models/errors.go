package models

import (
	"errors"
	"fmt"
)

// Error codes used in status responses and internal error handling.
const (
	ErrCodeTimeout           = "SCRAPE_TIMEOUT"
	ErrCodeNavigation        = "NAVIGATION_FAILED"
	ErrCodeExtraction        = "EXTRACTION_FAILED"
	ErrCodeBrowserCrash      = "BROWSER_CRASH"
	ErrCodeCaptchaUnresolved = "CAPTCHA_UNRESOLVED"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNoRecords         = "NO_RECORDS"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeNotWaiting        = "NOT_WAITING"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

var (
	// ErrStaleElement means the element was detached by a concurrent re-render.
	ErrStaleElement = errors.New("stale element")

	// ErrCaptchaUnresolved means the captcha was still shown after the operator resumed.
	ErrCaptchaUnresolved = errors.New("captcha still present after operator resume")

	// ErrNoRecords means a sink was asked to persist an empty collection.
	ErrNoRecords = errors.New("no records to save")

	// ErrHeaderNotFound means the input CSV has no domain column.
	ErrHeaderNotFound = errors.New("domain column not found")

	// ErrNoDomains means the input CSV has a domain column but no values.
	ErrNoDomains = errors.New("no non-empty domains")
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// CodeOf returns the code of the first ScrapeError in err's chain,
// or ErrCodeInternal.
func CodeOf(err error) string {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeScraperError = "SCRAPER_ERROR"
	CodeNavigation   = "NAVIGATION_ERROR"
	CodeSection      = "SECTION_ERROR"
	CodeValidation   = "VALIDATION_ERROR"
	CodeCache        = "CACHE_ERROR"
	CodeStorage      = "STORAGE_ERROR"
	CodeUnavailable  = "UNAVAILABLE_ERROR"
)

type ScraperError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *ScraperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ScraperError) Unwrap() error {
	return e.Cause
}

func NewScraperError(message, code string, statusCode int, context map[string]any) *ScraperError {
	return &ScraperError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *ScraperError) WithCause(cause error) *ScraperError {
	e.Cause = cause
	return e
}

// NavigationError reports a page that could not be loaded or never rendered
// the element it was waited on for.
type NavigationError struct {
	*ScraperError
	URL string
}

func NewNavigationError(message, url string, cause error) *NavigationError {
	return &NavigationError{
		ScraperError: &ScraperError{
			Message:    message,
			Code:       CodeNavigation,
			StatusCode: 502,
			Context: map[string]any{
				"url": url,
			},
			Cause: cause,
		},
		URL: url,
	}
}

// SectionError is carried by a degraded section result.
type SectionError struct {
	*ScraperError
	Section string
}

func NewSectionError(section string, cause error) *SectionError {
	return &SectionError{
		ScraperError: &ScraperError{
			Message:    fmt.Sprintf("section %s degraded", section),
			Code:       CodeSection,
			StatusCode: 500,
			Context: map[string]any{
				"section": section,
			},
			Cause: cause,
		},
		Section: section,
	}
}

type ValidationError struct {
	*ScraperError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		ScraperError: &ScraperError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*ScraperError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		ScraperError: &ScraperError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type StorageError struct {
	*ScraperError
	Operation string
}

func NewStorageError(message, operation string, cause error) *StorageError {
	return &StorageError{
		ScraperError: &ScraperError{
			Message:    message,
			Code:       CodeStorage,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
			},
			Cause: cause,
		},
		Operation: operation,
	}
}

// UnavailableError is returned while the scrape circuit is open.
type UnavailableError struct {
	*ScraperError
}

func NewUnavailableError(message string, context map[string]any) *UnavailableError {
	return &UnavailableError{
		ScraperError: &ScraperError{
			Message:    message,
			Code:       CodeUnavailable,
			StatusCode: 503,
			Context:    context,
		},
	}
}

// Describe returns the HTTP status and code carried by the first typed error
// in err's chain, or 500/SCRAPER_ERROR for anything else.
func Describe(err error) (int, string) {
	var (
		navigation  *NavigationError
		section     *SectionError
		validation  *ValidationError
		cache       *CacheError
		storage     *StorageError
		unavailable *UnavailableError
		base        *ScraperError
	)
	switch {
	case stderrors.As(err, &validation):
		return validation.StatusCode, validation.Code
	case stderrors.As(err, &unavailable):
		return unavailable.StatusCode, unavailable.Code
	case stderrors.As(err, &navigation):
		return navigation.StatusCode, navigation.Code
	case stderrors.As(err, &section):
		return section.StatusCode, section.Code
	case stderrors.As(err, &cache):
		return cache.StatusCode, cache.Code
	case stderrors.As(err, &storage):
		return storage.StatusCode, storage.Code
	case stderrors.As(err, &base):
		return base.StatusCode, base.Code
	}
	return 500, CodeScraperError
}

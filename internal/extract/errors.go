package extract

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/FreeMarketamilitia/classroom-grader/internal/retry"
)

// ErrorKind classifies why an attachment could not be extracted.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	KindTransient
	KindDecodeFailure
	KindUnsupportedType
	KindEmptyContent
	KindStructuralMismatch
	// KindNotFoundLocally means the submission itself had nothing to extract:
	// no attachments, or no form response to match.
	KindNotFoundLocally
)

var kindNames = map[ErrorKind]string{
	KindUnexpected:         "unexpected",
	KindNotFound:           "not_found",
	KindPermissionDenied:   "permission_denied",
	KindTransient:          "transient",
	KindDecodeFailure:      "decode_failure",
	KindUnsupportedType:    "unsupported_type",
	KindEmptyContent:       "empty_content",
	KindStructuralMismatch: "structural_mismatch",
	KindNotFoundLocally:    "not_found_locally",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unexpected"
}

// Error is an attachment-scoped extraction failure.
type Error struct {
	Kind ErrorKind
	// Attachment describes the failed attachment, e.g. "drive_file 'essay.txt' (1AbC)".
	// Empty for failures that concern the whole submission.
	Attachment string
	// Message is the human-readable reason.
	Message string
	// Err is the underlying provider error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Attachment == "" {
		return e.Message
	}
	return "[" + e.Attachment + "] " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AggregateError lists the per-attachment failures of a submission in
// attachment order.
type AggregateError struct {
	Errors []*Error
}

func (e *AggregateError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, err := range e.Errors {
		errs = append(errs, err)
	}
	return errs
}

// Kind returns the shared kind of all failures, or KindUnexpected when
// they differ.
func (e *AggregateError) Kind() ErrorKind {
	if len(e.Errors) == 0 {
		return KindUnexpected
	}
	kind := e.Errors[0].Kind
	for _, err := range e.Errors[1:] {
		if err.Kind != kind {
			return KindUnexpected
		}
	}
	return kind
}

// KindOf returns the kind of an extraction error. Errors that did not come
// from this package are KindUnexpected.
func KindOf(err error) ErrorKind {
	var agg *AggregateError
	if errors.As(err, &agg) {
		return agg.Kind()
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// providerErrorKind maps a provider failure to an ErrorKind.
func providerErrorKind(err error) ErrorKind {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound:
			return KindNotFound
		case apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusUnauthorized:
			if retry.IsRetryable(err) {
				return KindTransient
			}
			return KindPermissionDenied
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500:
			return KindTransient
		}
		return KindUnexpected
	}
	if retry.IsRetryable(err) {
		return KindTransient
	}
	return KindUnexpected
}

func isAPIError(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr)
}

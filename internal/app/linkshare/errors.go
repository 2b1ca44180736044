package linkshare

import "errors"

// Sentinel errors raised by envelope validation, authorization and dispatch.
var (
	ErrInvalidTopic       = errors.New("invalid topic")
	ErrMalformed          = errors.New("malformatted request")
	ErrUnknownLink        = errors.New("unknown document link")
	ErrUnknownCommunity   = errors.New("unknown community")
	ErrInvalidURL         = errors.New("invalid url")
	ErrNoHandlerForChange = errors.New("no handler for change")
)

// ErrorKind classifies a dispatch failure for the HTTP boundary.
type ErrorKind int

const (
	ErrorUnknown ErrorKind = iota
	ErrorInvalidTopic
	ErrorMalformed
	ErrorUnknownLink
	ErrorUnknownCommunity
	ErrorInvalidURL
	ErrorNoHandlerForChange
)

// ClassifyError maps an error returned by Dispatch to its kind.
func ClassifyError(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorUnknown
	case errors.Is(err, ErrInvalidTopic):
		return ErrorInvalidTopic
	case errors.Is(err, ErrMalformed):
		return ErrorMalformed
	case errors.Is(err, ErrUnknownLink):
		return ErrorUnknownLink
	case errors.Is(err, ErrUnknownCommunity):
		return ErrorUnknownCommunity
	case errors.Is(err, ErrInvalidURL):
		return ErrorInvalidURL
	case errors.Is(err, ErrNoHandlerForChange):
		return ErrorNoHandlerForChange
	}
	return ErrorUnknown
}

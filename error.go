package croft

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Code is an error code that mirrors the http status codes. It can be used to
// create errors to pass around across middleware layers to handle errors
// structurally.
type Code int

const (
	CodeUnknown                      Code = 0
	CodeBadRequest                   Code = http.StatusBadRequest                   // RFC 9110, 15.5.1
	CodeUnauthorized                 Code = http.StatusUnauthorized                 // RFC 9110, 15.5.2
	CodePaymentRequired              Code = http.StatusPaymentRequired              // RFC 9110, 15.5.3
	CodeForbidden                    Code = http.StatusForbidden                    // RFC 9110, 15.5.4
	CodeNotFound                     Code = http.StatusNotFound                     // RFC 9110, 15.5.5
	CodeMethodNotAllowed             Code = http.StatusMethodNotAllowed             // RFC 9110, 15.5.6
	CodeNotAcceptable                Code = http.StatusNotAcceptable                // RFC 9110, 15.5.7
	CodeProxyAuthRequired            Code = http.StatusProxyAuthRequired            // RFC 9110, 15.5.8
	CodeRequestTimeout               Code = http.StatusRequestTimeout               // RFC 9110, 15.5.9
	CodeConflict                     Code = http.StatusConflict                     // RFC 9110, 15.5.10
	CodeGone                         Code = http.StatusGone                         // RFC 9110, 15.5.11
	CodeLengthRequired               Code = http.StatusLengthRequired               // RFC 9110, 15.5.12
	CodePreconditionFailed           Code = http.StatusPreconditionFailed           // RFC 9110, 15.5.13
	CodeRequestEntityTooLarge        Code = http.StatusRequestEntityTooLarge        // RFC 9110, 15.5.14
	CodeRequestURITooLong            Code = http.StatusRequestURITooLong            // RFC 9110, 15.5.15
	CodeUnsupportedMediaType         Code = http.StatusUnsupportedMediaType         // RFC 9110, 15.5.16
	CodeRequestedRangeNotSatisfiable Code = http.StatusRequestedRangeNotSatisfiable // RFC 9110, 15.5.17
	CodeExpectationFailed            Code = http.StatusExpectationFailed            // RFC 9110, 15.5.18
	CodeTeapot                       Code = http.StatusTeapot                       // RFC 9110, 15.5.19 (Unused)
	CodeMisdirectedRequest           Code = http.StatusMisdirectedRequest           // RFC 9110, 15.5.20
	CodeUnprocessableEntity          Code = http.StatusUnprocessableEntity          // RFC 9110, 15.5.21
	CodeLocked                       Code = http.StatusLocked                       // RFC 4918, 11.3
	CodeFailedDependency             Code = http.StatusFailedDependency             // RFC 4918, 11.4
	CodeTooEarly                     Code = http.StatusTooEarly                     // RFC 8470, 5.2.
	CodeUpgradeRequired              Code = http.StatusUpgradeRequired              // RFC 9110, 15.5.22
	CodePreconditionRequired         Code = http.StatusPreconditionRequired         // RFC 6585, 3
	CodeTooManyRequests              Code = http.StatusTooManyRequests              // RFC 6585, 4
	CodeRequestHeaderFieldsTooLarge  Code = http.StatusRequestHeaderFieldsTooLarge  // RFC 6585, 5
	CodeUnavailableForLegalReasons   Code = http.StatusUnavailableForLegalReasons   // RFC 7725, 3

	CodeInternalServerError           Code = http.StatusInternalServerError           // RFC 9110, 15.6.1
	CodeNotImplemented                Code = http.StatusNotImplemented                // RFC 9110, 15.6.2
	CodeBadGateway                    Code = http.StatusBadGateway                    // RFC 9110, 15.6.3
	CodeServiceUnavailable            Code = http.StatusServiceUnavailable            // RFC 9110, 15.6.4
	CodeGatewayTimeout                Code = http.StatusGatewayTimeout                // RFC 9110, 15.6.5
	CodeHTTPVersionNotSupported       Code = http.StatusHTTPVersionNotSupported       // RFC 9110, 15.6.6
	CodeVariantAlsoNegotiates         Code = http.StatusVariantAlsoNegotiates         // RFC 2295, 8.1
	CodeInsufficientStorage           Code = http.StatusInsufficientStorage           // RFC 4918, 11.5
	CodeLoopDetected                  Code = http.StatusLoopDetected                  // RFC 5842, 7.2
	CodeNotExtended                   Code = http.StatusNotExtended                   // RFC 2774, 7
	CodeNetworkAuthenticationRequired Code = http.StatusNetworkAuthenticationRequired // RFC 6585, 6
)

// ErrorResponse is implemented by errors that know how to render themselves as
// a response. Any error that does not implement it renders as a bare 500.
type ErrorResponse interface {
	error
	IntoResponse() Response
}

// Error describes an http error.
type Error struct {
	code Code
	err  error
}

// NewError inits a new error given the error code.
func NewError(c Code, underlying error) *Error {
	return &Error{c, underlying}
}

// Errorf inits a new error with a formatted message.
func Errorf(c Code, format string, args ...any) *Error {
	return &Error{c, errors.Newf(format, args...)}
}

func (e *Error) Code() Code    { return e.code }
func (e *Error) Unwrap() error { return e.err }

func (e *Error) Error() string {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	return fmt.Sprintf("%s: %s", status, e.err.Error())
}

// IntoResponse renders the error as a plain-text response carrying the status
// text only. The underlying message stays server side.
func (e *Error) IntoResponse() Response {
	code := int(e.code)
	if code == 0 {
		code = http.StatusInternalServerError
	}

	resp := NewResponse(code)
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Body = BytesBody([]byte(http.StatusText(code)))

	return resp
}

// CodeOf returns the error's status code if it is or wraps an [*Error] and
// [CodeUnknown] otherwise.
func CodeOf(err error) Code {
	if herr, ok := asError(err); ok {
		return herr.Code()
	}

	return CodeUnknown
}

// asError uses errors.As to unwrap any error and look for an *Error.
func asError(err error) (*Error, bool) {
	var herr *Error
	ok := errors.As(err, &herr)

	return herr, ok
}

// responseOf is the single conversion from a handler error to a response. An
// [ErrorResponse] anywhere in the chain renders itself; everything else becomes
// a bare 500 without leaking the message.
func responseOf(err error) Response {
	var errResp ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.IntoResponse()
	}

	return NewResponse(http.StatusInternalServerError)
}

package croft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
)

// RequestHead holds everything about a request that is available without
// consuming the body: method, target URL, protocol version, header fields and
// an open extension map for passing opaque values across layers.
type RequestHead struct {
	Method     string
	URL        *url.URL
	Proto      string
	Header     http.Header
	Extensions *Extensions
}

// Request is the head plus the canonical streaming body. It is produced by an
// external connection layer and owned by one dispatch at a time.
type Request struct {
	RequestHead
	Body Body

	ctx     context.Context
	routing *RoutingState
}

// Context returns the request's context. Dropping the surrounding connection
// cancels it, which releases whatever the body and extraction hold.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}

	return r.ctx
}

// WithContext replaces the request's context.
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// NewRequest builds a request from its parts, mainly for tests and for
// re-dispatching a recovered [UnusedRequest].
func NewRequest(method, target string, body Body) *Request {
	u, err := url.Parse(target)
	if err != nil {
		panic("croft: " + err.Error())
	}

	if body == nil {
		body = EmptyBody()
	}

	return &Request{
		RequestHead: RequestHead{
			Method:     method,
			URL:        u,
			Proto:      "HTTP/1.1",
			Header:     make(http.Header),
			Extensions: NewExtensions(),
		},
		Body: body,
	}
}

// requestFromStd adapts a parsed net/http request into the dispatch currency.
func requestFromStd(r *http.Request) *Request {
	var body Body = EmptyBody()
	if r.Body != nil && r.Body != http.NoBody {
		body = ReaderBody(r.Body)
	}

	return &Request{
		RequestHead: RequestHead{
			Method:     r.Method,
			URL:        r.URL,
			Proto:      r.Proto,
			Header:     r.Header,
			Extensions: NewExtensions(),
		},
		Body: body,
		ctx:  r.Context(),
	}
}

// ResponseHead is the response's status, header fields and extension map.
type ResponseHead struct {
	StatusCode int
	Header     http.Header
	Extensions *Extensions
}

// Response is the outbound counterpart of [Request].
type Response struct {
	ResponseHead
	Body Body
}

// NewResponse inits an empty response with the given status code.
func NewResponse(statusCode int) Response {
	return Response{
		ResponseHead: ResponseHead{
			StatusCode: statusCode,
			Header:     make(http.Header),
			Extensions: NewExtensions(),
		},
		Body: EmptyBody(),
	}
}

// IntoResponse is implemented by values that convert into a full response.
type IntoResponse interface {
	IntoResponse() Response
}

// IntoResponseHead is implemented by values that fold structured data (headers,
// extensions) onto an existing response head. Folding the same singleton
// extension type twice aborts; that is a bug in handler composition.
type IntoResponseHead interface {
	IntoResponseHead(head *ResponseHead) error
}

// ToResponse converts a result-shaped return value into a response: success
// maps through [IntoResponse], failure through the error-response conversion,
// which is invoked exactly once.
func ToResponse[R IntoResponse](val R, err error) Response {
	if err != nil {
		return responseOf(err)
	}

	return val.IntoResponse()
}

// Response implements IntoResponse so handlers can return one directly.
func (r Response) IntoResponse() Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if r.Extensions == nil {
		r.Extensions = NewExtensions()
	}
	if r.Body == nil {
		r.Body = EmptyBody()
	}

	return r
}

// Status converts into an empty response with the given status code.
type Status int

func (s Status) IntoResponse() Response {
	return NewResponse(int(s))
}

// NoContent converts into a 204 response.
type NoContent struct{}

func (NoContent) IntoResponse() Response {
	return NewResponse(http.StatusNoContent)
}

// Text converts into a 200 response with a plain-text body.
type Text string

func (t Text) IntoResponse() Response {
	resp := NewResponse(http.StatusOK)
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Body = BytesBody([]byte(t))

	return resp
}

// JSON converts into a 200 response with the value encoded as a JSON body.
type JSON[T any] struct {
	Value T
}

func (j JSON[T]) IntoResponse() Response {
	data, err := json.Marshal(j.Value)
	if err != nil {
		return responseOf(NewError(CodeInternalServerError, errors.Wrap(err, "encode response body")))
	}

	resp := NewResponse(http.StatusOK)
	resp.Header.Set("Content-Type", "application/json")
	resp.Body = BytesBody(data)

	return resp
}

// Redirect converts into a redirect response for the given location.
type Redirect struct {
	Location  string
	Permanent bool
}

func (rd Redirect) IntoResponse() Response {
	code := http.StatusTemporaryRedirect
	if rd.Permanent {
		code = http.StatusPermanentRedirect
	}

	resp := NewResponse(code)
	resp.Header.Set("Location", rd.Location)

	return resp
}

// HeaderFields folds header fields onto a response head.
type HeaderFields http.Header

func (hf HeaderFields) IntoResponseHead(head *ResponseHead) error {
	for key, vals := range hf {
		for _, val := range vals {
			head.Header.Add(key, val)
		}
	}

	return nil
}

// ExtensionValue folds a singleton extension value onto a response head.
// Folding a second value of the same type aborts.
type ExtensionValue struct {
	Value any
}

func (ev ExtensionValue) IntoResponseHead(head *ResponseHead) error {
	head.Extensions.Insert(ev.Value)
	return nil
}

// FoldResponseHead applies the given conversions to the response's head in
// order, stopping at the first failure.
func FoldResponseHead(resp *Response, parts ...IntoResponseHead) error {
	for _, part := range parts {
		if err := part.IntoResponseHead(&resp.ResponseHead); err != nil {
			return err
		}
	}

	return nil
}

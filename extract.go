package croft

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
)

// FromRequestHead is implemented by types that populate themselves from data
// derivable without consuming the body: headers, path parameters, resource and
// handler extensions.
type FromRequestHead interface {
	FromRequestHead(ctx context.Context, head *RequestHead, args *Args) error
}

// FromRequest is implemented by types whose extraction must consume the body,
// e.g. deserializing a payload. At most one extracted parameter may consume
// the body; the [Fn0] through [Fn3] adapters discard whatever is left of it
// before invoking the wrapped function.
type FromRequest interface {
	FromRequest(ctx context.Context, req *Request, args *Args) error
}

// Extract populates a value of type T from the request. *T must implement
// [FromRequest] or [FromRequestHead]. Head extraction leaves the body
// untouched. Extraction errors that don't already render as a response are
// reported as a 400.
func Extract[T any, PT interface{ *T }](ctx context.Context, req *Request, args *Args) (T, error) {
	var val T

	switch x := any(PT(&val)).(type) {
	case FromRequest:
		if err := x.FromRequest(ctx, req, args); err != nil {
			return val, asExtractionError(err)
		}

	case FromRequestHead:
		if err := x.FromRequestHead(ctx, &req.RequestHead, args); err != nil {
			return val, asExtractionError(err)
		}

	default:
		return val, errors.Newf("croft: type %T implements neither FromRequest nor FromRequestHead", val)
	}

	return val, nil
}

func asExtractionError(err error) error {
	var errResp ErrorResponse
	if errors.As(err, &errResp) {
		return err
	}

	return NewError(CodeBadRequest, err)
}

// Fn0 adapts a parameterless callable into a [Handler].
func Fn0[O IntoResponse](f func(ctx context.Context) (O, error)) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request, _ *Args) (Response, error) {
		if err := DrainBody(ctx, req.Body); err != nil {
			return Response{}, asExtractionError(err)
		}

		return serveResult(f(ctx))
	})
}

// Fn1 adapts a callable with one extracted parameter into a [Handler].
func Fn1[I1 any, O IntoResponse](f func(ctx context.Context, in1 I1) (O, error)) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request, args *Args) (Response, error) {
		in1, err := Extract[I1](ctx, req, args)
		if err != nil {
			return Response{}, err
		}

		if err := DrainBody(ctx, req.Body); err != nil {
			return Response{}, asExtractionError(err)
		}

		return serveResult(f(ctx, in1))
	})
}

// Fn2 adapts a callable with two extracted parameters into a [Handler]. The
// body, if any parameter consumes it, may only be consumed once; order the
// body-consuming parameter last.
func Fn2[I1, I2 any, O IntoResponse](f func(ctx context.Context, in1 I1, in2 I2) (O, error)) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request, args *Args) (Response, error) {
		in1, err := Extract[I1](ctx, req, args)
		if err != nil {
			return Response{}, err
		}

		in2, err := Extract[I2](ctx, req, args)
		if err != nil {
			return Response{}, err
		}

		if err := DrainBody(ctx, req.Body); err != nil {
			return Response{}, asExtractionError(err)
		}

		return serveResult(f(ctx, in1, in2))
	})
}

// Fn3 adapts a callable with three extracted parameters into a [Handler].
func Fn3[I1, I2, I3 any, O IntoResponse](f func(ctx context.Context, in1 I1, in2 I2, in3 I3) (O, error)) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request, args *Args) (Response, error) {
		in1, err := Extract[I1](ctx, req, args)
		if err != nil {
			return Response{}, err
		}

		in2, err := Extract[I2](ctx, req, args)
		if err != nil {
			return Response{}, err
		}

		in3, err := Extract[I3](ctx, req, args)
		if err != nil {
			return Response{}, err
		}

		if err := DrainBody(ctx, req.Body); err != nil {
			return Response{}, asExtractionError(err)
		}

		return serveResult(f(ctx, in1, in2, in3))
	})
}

func serveResult[O IntoResponse](out O, err error) (Response, error) {
	if err != nil {
		return Response{}, err
	}

	return out.IntoResponse(), nil
}

// PathParams extracts every captured path parameter.
type PathParams Params

func (ps *PathParams) FromRequestHead(_ context.Context, _ *RequestHead, args *Args) error {
	*ps = PathParams(args.PathParams)
	return nil
}

// Get returns the value captured under the given name.
func (ps PathParams) Get(name string) (string, bool) {
	return Params(ps).Get(name)
}

// HeaderField extracts the request's header fields for point lookups.
type HeaderField http.Header

func (hf *HeaderField) FromRequestHead(_ context.Context, head *RequestHead, _ *Args) error {
	*hf = HeaderField(head.Header)
	return nil
}

// Get returns the first value of the named field.
func (hf HeaderField) Get(name string) string {
	return http.Header(hf).Get(name)
}

// RemainingPath extracts the unmatched path suffix. It is non-empty only for
// requests reclaimed by a subtree handler.
type RemainingPath string

func (rp *RemainingPath) FromRequestHead(_ context.Context, _ *RequestHead, args *Args) error {
	*rp = RemainingPath(args.RemainingPath)
	return nil
}

// ResourceExtension extracts the value of type T from the matched resource's
// extension set. A missing value is a registration bug and renders as a 500.
type ResourceExtension[T any] struct {
	Value T
}

func (re *ResourceExtension[T]) FromRequestHead(_ context.Context, _ *RequestHead, args *Args) error {
	val, ok := ExtensionFrom[T](args.ResourceExtensions.View())
	if !ok {
		return NewError(CodeInternalServerError, errors.Newf("no resource extension of type %T", re.Value))
	}

	re.Value = val

	return nil
}

// RawBody extracts the whole body as bytes.
type RawBody []byte

func (rb *RawBody) FromRequest(ctx context.Context, req *Request, _ *Args) error {
	data, _, err := ReadAllBody(ctx, req.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}

	*rb = data

	return nil
}

// JSONBody extracts a value of type T from the request body as JSON.
type JSONBody[T any] struct {
	Value T
}

func (jb *JSONBody[T]) FromRequest(ctx context.Context, req *Request, _ *Args) error {
	data, _, err := ReadAllBody(ctx, req.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}

	if err := json.Unmarshal(data, &jb.Value); err != nil {
		return errors.Wrap(err, "decode json body")
	}

	return nil
}

package croft

import (
	"context"
)

// Args carries the shared, per-dispatch arguments handlers and extractors see
// next to the request: captured path parameters, the unmatched path suffix
// (non-empty only for requests a subtree handler reclaimed), the matched
// resource's extension set (a borrowed view, see [SharedExtensions]) and the
// extension data registered alongside the handler itself. Args are read-only
// during extraction.
type Args struct {
	PathParams         Params
	RemainingPath      string
	ResourceExtensions SharedExtensions
	HandlerExtensions  *Extensions
}

// Handler is the polymorphic callable the tree stores: it accepts the request
// plus shared arguments and produces a response or an error convertible into
// one. The same handler instance is invoked by many concurrent requests, so
// any captured state must tolerate concurrent use.
type Handler interface {
	Serve(ctx context.Context, req *Request, args *Args) (Response, error)
}

// HandlerFunc allows casting a function to an implementation of [Handler].
type HandlerFunc func(ctx context.Context, req *Request, args *Args) (Response, error)

// Serve implements the [Handler] interface.
func (f HandlerFunc) Serve(ctx context.Context, req *Request, args *Args) (Response, error) {
	return f(ctx, req, args)
}

// convertErrors wraps a handler so any error it returns is converted to a
// response right there. Upstream layers therefore always observe a response,
// never a raw error, which keeps uniform logging middleware possible at the
// outermost point.
func convertErrors(h Handler) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request, args *Args) (Response, error) {
		resp, err := h.Serve(ctx, req, args)
		if err != nil {
			return responseOf(err), nil
		}

		return resp, nil
	})
}

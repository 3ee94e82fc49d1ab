package croft

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

// methodHandlers is a resource's per-method handler storage. Insertion order
// is preserved so the Allow header lists methods in registration order.
type methodHandlers struct {
	entries     []methodEntry
	wildcard    Handler // "all methods" catch-all
	unsupported Handler // explicit unsupported-method override
}

type methodEntry struct {
	method     string
	handler    Handler
	extensions *Extensions
}

func (mh *methodHandlers) isEmpty() bool {
	return len(mh.entries) == 0 && mh.wildcard == nil && mh.unsupported == nil
}

func (mh *methodHandlers) set(method string, handler Handler, extensions *Extensions) {
	for _, entry := range mh.entries {
		if entry.method == method {
			panic(fmt.Sprintf("croft: %s handler already exists", method))
		}
	}

	mh.entries = append(mh.entries, methodEntry{
		method:     method,
		handler:    convertErrors(handler),
		extensions: extensions,
	})
}

func (mh *methodHandlers) setWildcard(handler Handler) {
	if mh.wildcard != nil {
		panic("croft: wildcard method handler already exists")
	}

	mh.wildcard = convertErrors(handler)
}

func (mh *methodHandlers) setUnsupported(handler Handler) {
	if mh.unsupported != nil {
		panic("croft: unsupported method handler already exists")
	}

	mh.unsupported = convertErrors(handler)
}

// wrapMethods layers the stored handlers of the named methods.
func (mh *methodHandlers) wrapMethods(methods []string, layer Layer) {
	for _, method := range methods {
		found := false

		for i, entry := range mh.entries {
			if entry.method != method {
				continue
			}

			mh.entries[i].handler = convertErrors(layer(entry.handler))
			found = true

			break
		}

		if !found {
			panic(fmt.Sprintf("croft: %s handler doesn't exist", method))
		}
	}
}

func (mh *methodHandlers) wrapWildcard(layer Layer) {
	if mh.wildcard == nil {
		panic("croft: wildcard method handler doesn't exist")
	}

	mh.wildcard = convertErrors(layer(mh.wildcard))
}

// AllowedMethods carries the Allow header value into a custom
// unsupported-method handler via the request's extension data.
type AllowedMethods string

// allowedMethods joins the registered method tokens with the standard
// comma-space separator, in registration order.
func (mh *methodHandlers) allowedMethods() AllowedMethods {
	tokens := lo.Map(mh.entries, func(entry methodEntry, _ int) string {
		return entry.method
	})

	return AllowedMethods(strings.Join(tokens, ", "))
}

// dispatch looks the request's method up and invokes its handler. A miss falls
// back to the catch-all handler, the explicit unsupported-method handler, or
// the default 405 response, in that order.
func (mh *methodHandlers) dispatch(ctx context.Context, req *Request, rsc *Resource) (Response, error) {
	for _, entry := range mh.entries {
		if entry.method != req.Method {
			continue
		}

		return entry.handler.Serve(ctx, req, rsc.dispatchArgs(req.routing, entry.extensions))
	}

	if mh.wildcard != nil {
		return mh.wildcard.Serve(ctx, req, rsc.dispatchArgs(req.routing, nil))
	}

	allowed := mh.allowedMethods()

	if mh.unsupported != nil {
		req.Extensions.Set(allowed)
		return mh.unsupported.Serve(ctx, req, rsc.dispatchArgs(req.routing, nil))
	}

	return handleNotAllowedMethod(req, allowed), nil
}

// handleNotAllowedMethod is the default 405 response, enumerating the
// registered methods in the Allow header.
func handleNotAllowedMethod(_ *Request, allowed AllowedMethods) Response {
	resp := NewResponse(http.StatusMethodNotAllowed)
	resp.Header.Set("Allow", string(allowed))

	return resp
}

// UnusedRequest wraps a request that reached a dead end so surrounding layers
// can recover and re-dispatch or log it instead of it being dropped. It is
// carried in the 404 response's extension data.
type UnusedRequest struct {
	req *Request
}

// Request returns the wrapped request.
func (u *UnusedRequest) Request() *Request { return u.req }

// UnusedRequestFrom retrieves the unmatched request from a response, if the
// response carries one.
func UnusedRequestFrom(resp *Response) (*Request, bool) {
	unused, ok := ExtensionFrom[*UnusedRequest](resp.Extensions)
	if !ok {
		return nil, false
	}

	return unused.req, true
}

// misdirectedRequestHandler is the default fallback for requests no resource
// matched: a 404 response that stores the original request for recovery.
func misdirectedRequestHandler(_ context.Context, req *Request, _ *Args) (Response, error) {
	resp := NewResponse(http.StatusNotFound)
	resp.Extensions.Set(&UnusedRequest{req: req})

	return resp, nil
}

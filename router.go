package croft

import (
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Router owns the resource tree's root and adapts the dispatch core to the
// standard library's server plumbing: it implements http.Handler, turning a
// parsed request into the dispatch currency and writing the produced response
// back onto the wire.
//
// The tree is mutable only until the first request is served; the first call
// to ServeHTTP composes every middleware slot and freezes the tree, after
// which it is shared read-only across all concurrent requests.
type Router struct {
	root     *Resource
	logs     Logger
	reverser *Reverser

	buildOnce sync.Once
}

// NewRouter creates a router with default settings.
func NewRouter() *Router {
	return NewRouterWith(NewStdLogger(log.Default()), NewReverser())
}

// NewRouterWith creates a router with a custom logger and reverser.
func NewRouterWith(logs Logger, reverser *Reverser) *Router {
	return &Router{
		root:     newResource(pattern{kind: staticPattern, literal: ""}),
		logs:     logs,
		reverser: reverser,
	}
}

// Resource declares (or retrieves) the resource at the given path, creating
// intermediate resources as needed.
func (ro *Router) Resource(path string) *Resource {
	return ro.root.Resource(path)
}

// Handle registers a handler using a "METHOD /path" pattern. A pattern without
// a method registers the handler for all methods. An optional name registers
// the path for URL reversing.
func (ro *Router) Handle(pattern string, handler Handler, name ...string) {
	method, path := splitMethodPattern(pattern)

	if len(name) > 0 {
		ro.reverser.Named(name[0], path)
	}

	rsc := ro.Resource(path)
	if method == "" {
		rsc.HandleAll(handler)
		return
	}

	rsc.Handle(method, handler)
}

// HandleFunc registers a handler function using a "METHOD /path" pattern.
func (ro *Router) HandleFunc(pattern string, f HandlerFunc, name ...string) {
	ro.Handle(pattern, f, name...)
}

// Use registers middleware layers on the root resource. Targets without an
// explicit point wrap the whole dispatch at the root's request receiver.
func (ro *Router) Use(targets ...LayerTarget) {
	ro.root.Wrap(targets...)
}

// Reverse returns the url based on the name and parameter values.
func (ro *Router) Reverse(name string, vals ...string) (string, error) {
	return ro.reverser.Reverse(name, vals...)
}

// Dispatch runs a request through the tree and returns the produced response.
// It is the transport-independent entry point ServeHTTP builds on; tests and
// re-dispatching layers use it directly.
func (ro *Router) Dispatch(req *Request) Response {
	ro.buildOnce.Do(ro.root.build)

	rs := newRoutingState(req.URL.EscapedPath())
	req.routing = rs

	ctx := req.Context()

	resp, err := ro.root.composed.receiver.Serve(ctx, req, ro.root.traversalArgs(rs))
	if err != nil {
		// The composed slots convert errors themselves; this is the last net.
		ro.logs.LogUnhandledServeError(err)
		resp = responseOf(err)
	}

	return resp
}

// ServeHTTP implements the http.Handler interface.
func (ro *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := requestFromStd(r)

	resp := ro.Dispatch(req)

	ro.writeResponse(w, r, resp)
}

func (ro *Router) writeResponse(w http.ResponseWriter, r *http.Request, resp Response) {
	header := w.Header()
	for key, vals := range resp.Header {
		header[key] = vals
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)

	if resp.Body == nil {
		return
	}

	ctx := r.Context()

	for {
		frame, err := resp.Body.Next(ctx)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			ro.logs.LogResponseBodyError(err)
			return
		}

		if frame.IsData() {
			if _, err := w.Write(frame.Data()); err != nil {
				ro.logs.LogResponseWriteError(err)
				return
			}

			continue
		}

		for key, vals := range frame.Trailers() {
			for _, val := range vals {
				header.Add(http.TrailerPrefix+key, val)
			}
		}
	}
}

// splitMethodPattern splits a "METHOD /path" registration pattern.
func splitMethodPattern(pattern string) (method, path string) {
	if idx := strings.Index(pattern, " "); idx >= 0 {
		return pattern[:idx], strings.TrimLeft(pattern[idx+1:], " ")
	}

	return "", pattern
}

package croft

import (
	"fmt"
	"slices"
)

// ConfigOption is one enumerated per-resource option.
type ConfigOption int

const (
	// SubtreeHandler lets the resource handle requests whose paths continue
	// past it but match nothing below it, instead of the 404 bubbling out.
	SubtreeHandler ConfigOption = iota
)

// configSet is a plain set of enumerated options.
type configSet []ConfigOption

func (cs configSet) contains(opt ConfigOption) bool {
	return slices.Contains(cs, opt)
}

// Resource is a node in the routing tree: one path segment's registration
// unit. It owns its child nodes, its method handler table, its extension set
// and up to six middleware layer points. The tree is built once through the
// registration API and is immutable while serving; traversal needs no locks.
type Resource struct {
	pattern pattern
	methods methodHandlers

	staticChildren []*Resource
	paramChild     *Resource
	wildcardChild  *Resource

	layers struct {
		receiver    []Layer
		passer      []Layer
		handler     []Layer
		mistargeted []Layer
	}

	extensions *Extensions
	config     configSet

	// composed slots, filled at build time; request-time cost is invocation.
	composed struct {
		receiver    Handler
		passer      Handler
		handler     Handler
		mistargeted Handler
	}

	frozen bool
}

func newResource(pat pattern) *Resource {
	return &Resource{pattern: pat, extensions: NewExtensions()}
}

// Pattern returns the resource's segment pattern as registered.
func (rsc *Resource) Pattern() string { return rsc.pattern.String() }

// Resource declares (or retrieves) the resource at the given path below this
// one, creating intermediate resources as needed. Path syntax is
// "/literal/{param}/*rest". Configuration errors (ambiguous segment kinds,
// children under a wildcard) abort at build time.
func (rsc *Resource) Resource(path string) *Resource {
	rsc.ensureMutable()

	patterns, err := parseRoutePath(path)
	if err != nil {
		panic("croft: " + err.Error())
	}

	node := rsc
	for _, pat := range patterns {
		node = node.child(pat)
	}

	return node
}

func (rsc *Resource) child(pat pattern) *Resource {
	if rsc.pattern.kind == wildcardPattern {
		panic(fmt.Sprintf("croft: wildcard resource %q cannot have children", rsc.pattern))
	}

	switch pat.kind {
	case staticPattern:
		for _, c := range rsc.staticChildren {
			if c.pattern.literal == pat.literal {
				return c
			}
		}

		c := newResource(pat)
		rsc.staticChildren = append(rsc.staticChildren, c)

		return c

	case paramPattern:
		if rsc.paramChild != nil {
			if rsc.paramChild.pattern.name != pat.name {
				panic(fmt.Sprintf(
					"croft: resource %q already has a parameter child %q, cannot add %q",
					rsc.pattern, rsc.paramChild.pattern, pat,
				))
			}

			return rsc.paramChild
		}

		rsc.paramChild = newResource(pat)

		return rsc.paramChild

	default:
		if rsc.wildcardChild != nil {
			if rsc.wildcardChild.pattern.name != pat.name {
				panic(fmt.Sprintf(
					"croft: resource %q already has a wildcard child %q, cannot add %q",
					rsc.pattern, rsc.wildcardChild.pattern, pat,
				))
			}

			return rsc.wildcardChild
		}

		rsc.wildcardChild = newResource(pat)

		return rsc.wildcardChild
	}
}

// Handle registers the handler for the given HTTP method. Optional extension
// values become the handler-level extension data extractors see in [Args].
// Registering the same method twice aborts at build time.
func (rsc *Resource) Handle(method string, handler Handler, extensions ...any) *Resource {
	rsc.ensureMutable()

	var ext *Extensions
	if len(extensions) > 0 {
		ext = NewExtensions()
		for _, val := range extensions {
			ext.Insert(val)
		}
	}

	rsc.methods.set(method, handler, ext)

	return rsc
}

// HandleFunc registers a handler function for the given HTTP method.
func (rsc *Resource) HandleFunc(method string, f HandlerFunc, extensions ...any) *Resource {
	return rsc.Handle(method, f, extensions...)
}

// HandleAll registers the "all methods" catch-all handler, invoked for any
// method without its own handler.
func (rsc *Resource) HandleAll(handler Handler) *Resource {
	rsc.ensureMutable()
	rsc.methods.setWildcard(handler)

	return rsc
}

// SetUnsupportedMethodHandler overrides the default 405 handling. The handler
// finds the [AllowedMethods] value in the request's extension data.
func (rsc *Resource) SetUnsupportedMethodHandler(handler Handler) *Resource {
	rsc.ensureMutable()
	rsc.methods.setUnsupported(handler)

	return rsc
}

// Wrap registers middleware layers at their tagged injection points.
func (rsc *Resource) Wrap(targets ...LayerTarget) *Resource {
	rsc.ensureMutable()

	for _, target := range targets {
		switch target.point {
		case requestReceiverPoint:
			rsc.layers.receiver = append(rsc.layers.receiver, target.layer)
		case requestPasserPoint:
			rsc.layers.passer = append(rsc.layers.passer, target.layer)
		case requestHandlerPoint:
			rsc.layers.handler = append(rsc.layers.handler, target.layer)
		case methodHandlerPoint:
			rsc.methods.wrapMethods(target.methods, target.layer)
		case wildcardMethodHandlerPoint:
			rsc.methods.wrapWildcard(target.layer)
		case mistargetedRequestHandlerPoint:
			rsc.layers.mistargeted = append(rsc.layers.mistargeted, target.layer)
		}
	}

	return rsc
}

// Configure enables the given options on the resource.
func (rsc *Resource) Configure(opts ...ConfigOption) *Resource {
	rsc.ensureMutable()
	rsc.config = append(rsc.config, opts...)

	return rsc
}

// SetExtension stores a value in the resource's extension set, shared
// read-only with every dispatch through this resource.
func (rsc *Resource) SetExtension(val any) *Resource {
	rsc.ensureMutable()
	rsc.extensions.Set(val)

	return rsc
}

func (rsc *Resource) isSubtreeHandler() bool {
	return rsc.config.contains(SubtreeHandler)
}

func (rsc *Resource) canHandleRequest() bool {
	return !rsc.methods.isEmpty()
}

func (rsc *Resource) ensureMutable() {
	if rsc.frozen {
		panic("croft: cannot register after serving has started")
	}
}

// build composes every layer slot once, freezing the subtree. The slots
// default to the base receive/pass/handle trio when no layers are registered.
func (rsc *Resource) build() {
	if rsc.frozen {
		return
	}

	rsc.frozen = true

	rsc.composed.mistargeted = composeLayers(HandlerFunc(misdirectedRequestHandler), rsc.layers.mistargeted)
	rsc.composed.handler = composeLayers(HandlerFunc(rsc.handleRequest), rsc.layers.handler)
	rsc.composed.passer = composeLayers(HandlerFunc(rsc.passRequest), rsc.layers.passer)
	rsc.composed.receiver = composeLayers(HandlerFunc(rsc.receiveRequest), rsc.layers.receiver)

	for _, c := range rsc.staticChildren {
		c.build()
	}
	if rsc.paramChild != nil {
		rsc.paramChild.build()
	}
	if rsc.wildcardChild != nil {
		rsc.wildcardChild.build()
	}
}

// traversalArgs are the shared arguments layers at the receiver and passer
// points observe while the request travels through this resource.
func (rsc *Resource) traversalArgs(rs *RoutingState) *Args {
	return &Args{
		PathParams:         rs.params,
		RemainingPath:      rs.remaining(),
		ResourceExtensions: shareExtensions(rsc.extensions),
	}
}

// dispatchArgs are the shared arguments the terminal method dispatch hands to
// the handler and its extractors.
func (rsc *Resource) dispatchArgs(rs *RoutingState, handlerExt *Extensions) *Args {
	return &Args{
		PathParams:         rs.params,
		RemainingPath:      rs.remaining(),
		ResourceExtensions: shareExtensions(rsc.extensions),
		HandlerExtensions:  handlerExt,
	}
}

package croft

// Layer is one middleware unit: a handler-to-handler transformation. Layers
// registered at the same injection point compose in registration order; the
// layer provided first is the outermost wrapping, the layer provided last is
// closest to the wrapped handler. That matches the order of the Gorilla and
// Chi routers.
type Layer func(Handler) Handler

// layerPoint names one of the six injection points along the dispatch path.
type layerPoint int

const (
	// requestReceiverPoint wraps the node's entire subtree dispatch.
	requestReceiverPoint layerPoint = iota
	// requestPasserPoint wraps the descend-or-terminate decision.
	requestPasserPoint
	// requestHandlerPoint wraps the final method dispatch of the node.
	requestHandlerPoint
	// methodHandlerPoint wraps the handlers of named methods only.
	methodHandlerPoint
	// wildcardMethodHandlerPoint wraps the "all methods" catch-all handler.
	wildcardMethodHandlerPoint
	// mistargetedRequestHandlerPoint wraps the no-match fallback.
	mistargetedRequestHandlerPoint
)

// LayerTarget tags a layer with the injection point it applies to. Construct
// one with [RequestReceiver], [RequestPasser], [RequestHandler],
// [MethodHandler], [WildcardMethodHandler] or [MistargetedRequestHandler] and
// register it with [Resource.Wrap].
type LayerTarget struct {
	point   layerPoint
	methods []string
	layer   Layer
}

// RequestReceiver targets the layer at the point wrapping the node's entire
// subtree dispatch. It runs once per node as traversal passes through it,
// before children are tried.
func RequestReceiver(l Layer) LayerTarget {
	return LayerTarget{point: requestReceiverPoint, layer: l}
}

// RequestPasser targets the layer at the point deciding whether to continue
// descending or terminate at the node.
func RequestPasser(l Layer) LayerTarget {
	return LayerTarget{point: requestPasserPoint, layer: l}
}

// RequestHandler targets the layer at the point wrapping the final method
// dispatch once the node is identified as the match target.
func RequestHandler(l Layer) LayerTarget {
	return LayerTarget{point: requestHandlerPoint, layer: l}
}

// MethodHandler targets the layer at the handlers of the named methods only.
func MethodHandler(l Layer, methods ...string) LayerTarget {
	if len(methods) == 0 {
		panic("croft: MethodHandler layer needs at least one method")
	}

	return LayerTarget{point: methodHandlerPoint, methods: methods, layer: l}
}

// WildcardMethodHandler targets the layer at the "all methods" catch-all
// handler of the node.
func WildcardMethodHandler(l Layer) LayerTarget {
	return LayerTarget{point: wildcardMethodHandlerPoint, layer: l}
}

// MistargetedRequestHandler targets the layer at the fallback handling
// requests that found no match under the node's subtree.
func MistargetedRequestHandler(l Layer) LayerTarget {
	return LayerTarget{point: mistargetedRequestHandlerPoint, layer: l}
}

// composeLayers wraps the base handler with the given layers, outermost first.
// Every wrapping is followed by error conversion so a layer returning an error
// still presents a response to the layer above it. Composition happens once at
// tree-build time; request-time cost is pure invocation.
func composeLayers(base Handler, layers []Layer) Handler {
	wrapped := convertErrors(base)

	for i := len(layers) - 1; i >= 0; i-- {
		wrapped = convertErrors(layers[i](wrapped))
	}

	return wrapped
}

// Package croft provides the request-routing and dispatch core of an HTTP
// server framework: a tree of resources matched segment by segment, typed
// request extraction, and middleware layered at six points along the dispatch
// path.
//
// # Overview
//
// Requests are located among registered resources by walking the tree one path
// segment at a time. Each resource stores handlers per HTTP method, and the
// dispatch produces a well-defined 404 or 405 response when no exact match
// exists. Handlers declare typed parameters through extraction and return
// typed results converted into responses.
//
// A minimal example:
//
//	ro := croft.NewRouter()
//	ro.Resource("/users/{id}").HandleFunc(http.MethodGet,
//	    func(ctx context.Context, req *croft.Request, args *croft.Args) (croft.Response, error) {
//	        id, _ := args.PathParams.Get("id")
//	        return croft.Text("user " + id).IntoResponse(), nil
//	    })
//
//	http.ListenAndServe(":8080", ro)
//
// # Resources and Matching
//
// A resource represents one path segment. Segments are static literals,
// named-parameter captures ("{id}") or wildcard captures ("*rest"). At each
// node, static children are tried first, then the parameter child, then the
// wildcard child; the tie-break order is fixed, so the most specific route
// always wins regardless of registration order. A wildcard capture is greedy
// and terminal: it consumes every remaining segment as one value.
//
//	ro.Resource("/users/me")       // matched before {id} for /users/me
//	ro.Resource("/users/{id}")     // id="42" for /users/42
//	ro.Resource("/files/*rest")    // rest="a/b/c" for /files/a/b/c
//
// Registration is the only mutation surface. The tree is built once, composed
// and frozen when the first request is served, and shared read-only across all
// concurrent requests afterwards.
//
// # Method Handlers and Fallbacks
//
// Each resource maps HTTP methods to handlers in registration order. A request
// with an unregistered method gets a 405 response whose Allow header lists the
// registered methods, unless an "all methods" handler ([Resource.HandleAll])
// or an explicit unsupported-method handler is set. A request whose path
// matches no resource gets a 404 response carrying the original request as an
// [UnusedRequest] in its extension data, so an enclosing layer can recover and
// re-dispatch or log it.
//
// # Extraction and Responses
//
// Typed parameters implement [FromRequestHead] (headers, path parameters,
// extensions) or [FromRequest] (body-consuming, e.g. [JSONBody]). The adapters
// [Fn0] through [Fn3] turn plain functions over extracted values into
// handlers:
//
//	ro.Resource("/orders").Handle(http.MethodPost,
//	    croft.Fn1(func(ctx context.Context, in croft.JSONBody[Order]) (croft.JSON[Order], error) {
//	        return croft.JSON[Order]{Value: in.Value}, nil
//	    }))
//
// Return values implement [IntoResponse]; errors implementing [ErrorResponse]
// render themselves, anything else becomes a bare 500. Conversion happens as
// close to the error's origin as possible, so middleware always observes a
// response.
//
// # Middleware
//
// A [Layer] is a handler-to-handler transformation. Layers attach to one of
// six injection points per resource ([RequestReceiver], [RequestPasser],
// [RequestHandler], [MethodHandler], [WildcardMethodHandler],
// [MistargetedRequestHandler]) and compose once at build time:
//
//	ro.Resource("/admin").Wrap(croft.RequestReceiver(func(next croft.Handler) croft.Handler {
//	    return croft.HandlerFunc(func(ctx context.Context, req *croft.Request, args *croft.Args) (croft.Response, error) {
//	        // runs for the whole /admin subtree
//	        return next.Serve(ctx, req, args)
//	    })
//	}))
//
// Layers at one point run in registration order on the way in and reverse
// order on the way out. The stock layers in the middleware subpackage cover
// request ids, access logging, panic recovery and tracing.
//
// # Bodies
//
// Both requests and responses carry the canonical streaming [Body]: a sequence
// of data frames ending in optional trailers. Concrete sources (byte slices,
// readers, foreign streams) adapt into it via [BytesBody], [ReaderBody] and
// [AdaptBody]; adapter errors are boxed and surface as stream-read failures to
// whoever reads the body.
package croft

package croft

import (
	"context"
	"net/http"
)

// The base receive/pass/handle trio below drives tree traversal. Each
// resource's composed slots wrap these with the layers registered at the
// corresponding injection points, so traversal passes through middleware
// outermost-first on the way in and in reverse on the way out.

// receiveRequest wraps the resource's entire subtree dispatch. With segments
// remaining it delegates to the passer; at the end of the path it delegates to
// the terminal handler. A 404 bubbling out of the subtree is reclaimed here
// when the resource is a subtree handler that can serve the request itself.
func (rsc *Resource) receiveRequest(ctx context.Context, req *Request, _ *Args) (Response, error) {
	rs := req.routing

	if rs.hasRemaining() {
		resp, err := rsc.composed.passer.Serve(ctx, req, rsc.traversalArgs(rs))
		if err != nil {
			return responseOf(err), nil
		}

		if resp.StatusCode != http.StatusNotFound || !rsc.isSubtreeHandler() || !rsc.canHandleRequest() {
			return resp, nil
		}

		unused, ok := TakeExtension[*UnusedRequest](resp.Extensions)
		if !ok {
			return resp, nil
		}

		// Reclaim the dead-ended request and handle it on this resource.
		req = unused.req
	}

	return rsc.composed.handler.Serve(ctx, req, rsc.traversalArgs(rs))
}

// passRequest decides between descending further and terminating at this
// resource. Children are tried in the fixed tie-break order static > parameter
// > wildcard; the order guarantees the most specific route wins regardless of
// registration order. A wildcard match captures every remaining segment as one
// value and ends the descent.
func (rsc *Resource) passRequest(ctx context.Context, req *Request, _ *Args) (Response, error) {
	rs := req.routing

	segment, segmentIndex, ok := rs.nextSegment()
	if !ok {
		return rsc.composed.mistargeted.Serve(ctx, req, rsc.traversalArgs(rs))
	}

	paramsMark := len(rs.params)

	var next *Resource

	// Static literals are kept percent-encoded as registered; they match the
	// raw segment without decoding.
	for _, c := range rsc.staticChildren {
		if c.pattern.literal == segment {
			next = c
			break
		}
	}

	if next == nil {
		switch {
		case rsc.paramChild != nil:
			rs.capture(rsc.paramChild.pattern.name, decodeSegment(segment))
			next = rsc.paramChild

		case rsc.wildcardChild != nil:
			rs.capture(rsc.wildcardChild.pattern.name, decodeSegment(rs.path[segmentIndex:]))
			rs.consumeAll()
			next = rsc.wildcardChild
		}
	}

	if next == nil {
		rs.revertToSegment(segmentIndex)
		return rsc.composed.mistargeted.Serve(ctx, req, rsc.traversalArgs(rs))
	}

	resp, err := next.composed.receiver.Serve(ctx, req, next.traversalArgs(rs))
	if err != nil {
		return responseOf(err), nil
	}

	// A dead end below this resource: restore the routing state on the carried
	// request, dropping captures the failed descent made, so an enclosing
	// subtree handler reclaims it in this resource's terms.
	if unused, found := ExtensionFrom[*UnusedRequest](resp.Extensions); found {
		urs := unused.req.routing
		urs.params = urs.params[:paramsMark]
		urs.revertToSegment(segmentIndex)
	}

	return resp, nil
}

// handleRequest is the terminal method dispatch at the match target.
func (rsc *Resource) handleRequest(ctx context.Context, req *Request, args *Args) (Response, error) {
	if rsc.methods.isEmpty() {
		return rsc.composed.mistargeted.Serve(ctx, req, args)
	}

	return rsc.methods.dispatch(ctx, req, rsc)
}

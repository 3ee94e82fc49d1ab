package croft

import (
	"net/url"
	"strings"
)

// Param is one captured path parameter.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered list of captured path parameters. Capture order follows
// traversal order from the root.
type Params []Param

// Get returns the value captured under the given name.
func (ps Params) Get(name string) (string, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Value, true
		}
	}

	return "", false
}

// RoutingState is the per-request mutable context that travels through tree
// traversal. It is owned by the request's goroutine and never shared.
type RoutingState struct {
	path   string
	cursor int
	params Params
}

// newRoutingState starts a traversal over the escaped request path. A single
// trailing slash is ignored; the root path "/" keeps its implicit empty
// segment consumed.
func newRoutingState(path string) *RoutingState {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}

	cursor := 0
	if strings.HasPrefix(path, "/") {
		cursor = 1
	}

	return &RoutingState{path: path, cursor: cursor}
}

// Params returns the parameters captured so far.
func (rs *RoutingState) Params() Params { return rs.params }

func (rs *RoutingState) capture(name, value string) {
	rs.params = append(rs.params, Param{Name: name, Value: value})
}

func (rs *RoutingState) hasRemaining() bool {
	return rs.cursor < len(rs.path)
}

// remaining returns the unconsumed suffix of the path.
func (rs *RoutingState) remaining() string {
	if rs.cursor < len(rs.path) {
		return rs.path[rs.cursor:]
	}

	return ""
}

// nextSegment pops the next path segment and returns it along with the index
// it started at, so a failed descent can revert to it.
func (rs *RoutingState) nextSegment() (segment string, index int, ok bool) {
	if rs.cursor >= len(rs.path) {
		return "", rs.cursor, false
	}

	index = rs.cursor
	rest := rs.path[index:]

	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		rs.cursor += slash + 1
		return rest[:slash], index, true
	}

	rs.cursor = len(rs.path)

	return rest, index, true
}

// consumeAll advances past every remaining segment. Used by wildcard matching,
// which is greedy and terminal.
func (rs *RoutingState) consumeAll() {
	rs.cursor = len(rs.path)
}

// revertToSegment rewinds the traversal to a previously returned segment index.
func (rs *RoutingState) revertToSegment(index int) {
	rs.cursor = index
}

// decodeSegment percent-decodes a raw path segment. Undecodable segments are
// matched raw; static literals never decode at all.
func decodeSegment(segment string) string {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}

	return decoded
}

package croft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRouteTraversal(t *testing.T) {
	rs := newRoutingState("/abc/def/ghi")

	seg, idx, ok := rs.nextSegment()
	require.True(t, ok)
	require.Equal(t, "abc", seg)
	require.Equal(t, 1, idx)

	seg, idx, ok = rs.nextSegment()
	require.True(t, ok)
	require.Equal(t, "def", seg)
	require.Equal(t, 5, idx)

	seg, _, ok = rs.nextSegment()
	require.True(t, ok)
	require.Equal(t, "ghi", seg)
	require.False(t, rs.hasRemaining())

	rs.revertToSegment(5)
	require.True(t, rs.hasRemaining())
	require.Equal(t, "def/ghi", rs.remaining())
}

func TestRouteTraversalRoot(t *testing.T) {
	rs := newRoutingState("/")
	require.False(t, rs.hasRemaining())

	_, _, ok := rs.nextSegment()
	require.False(t, ok)
}

func TestRouteTraversalTrailingSlash(t *testing.T) {
	rs := newRoutingState("/abc/")

	seg, _, ok := rs.nextSegment()
	require.True(t, ok)
	require.Equal(t, "abc", seg)
	require.False(t, rs.hasRemaining())
}

func TestRouteTraversalConsumeAll(t *testing.T) {
	rs := newRoutingState("/a/b/c")

	_, idx, ok := rs.nextSegment()
	require.True(t, ok)

	rs.consumeAll()
	require.False(t, rs.hasRemaining())

	rs.revertToSegment(idx)
	require.Equal(t, "a/b/c", rs.remaining())
}

func TestParamsGet(t *testing.T) {
	ps := Params{{Name: "id", Value: "42"}, {Name: "rest", Value: "a/b"}}

	val, ok := ps.Get("id")
	require.True(t, ok)
	require.Equal(t, "42", val)

	_, ok = ps.Get("nope")
	require.False(t, ok)
}

func TestDecodeSegment(t *testing.T) {
	require.Equal(t, "hello world", decodeSegment("hello%20world"))
	require.Equal(t, "plain", decodeSegment("plain"))
	// undecodable segments match raw
	require.Equal(t, "bad%zz", decodeSegment("bad%zz"))
}

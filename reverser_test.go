package croft_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crofthq/croft"
)

func TestReverser(t *testing.T) {
	rev := croft.NewReverser()
	rev.Named("user-post", "/users/{id}/posts/{post}")
	rev.Named("files", "/files/*rest")
	rev.Named("home", "/")

	url, err := rev.Reverse("user-post", "7", "99")
	require.NoError(t, err)
	require.Equal(t, "/users/7/posts/99", url)

	url, err = rev.Reverse("files", "a/b/c.txt")
	require.NoError(t, err)
	require.Equal(t, "/files/a/b/c.txt", url)

	url, err = rev.Reverse("home")
	require.NoError(t, err)
	require.Equal(t, "/", url)
}

func TestReverserErrors(t *testing.T) {
	rev := croft.NewReverser()
	rev.Named("user", "/users/{id}")

	_, err := rev.Reverse("nope")
	require.ErrorContains(t, err, `no path named "nope"`)

	_, err = rev.Reverse("user")
	require.ErrorContains(t, err, "needs a value")

	_, err = rev.Reverse("user", "1", "2")
	require.ErrorContains(t, err, "got 2 values")

	require.Error(t, rev.NamedPath("user", "/users/{id}"))
	require.Error(t, rev.NamedPath("bad", "not-rooted"))

	require.Panics(t, func() {
		rev.Named("user", "/users/{id}")
	})
}

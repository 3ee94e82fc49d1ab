package croft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type extA string

type extB int

func TestExtensionsSetAndGet(t *testing.T) {
	ext := NewExtensions()
	require.Equal(t, 0, ext.Len())

	ext.Set(extA("one"))
	ext.Set(extB(2))
	require.Equal(t, 2, ext.Len())

	a, ok := ExtensionFrom[extA](ext)
	require.True(t, ok)
	require.Equal(t, extA("one"), a)

	ext.Set(extA("two"))
	a, _ = ExtensionFrom[extA](ext)
	require.Equal(t, extA("two"), a)

	_, ok = ExtensionFrom[string](ext)
	require.False(t, ok)
}

func TestExtensionsInsertRejectsDuplicates(t *testing.T) {
	ext := NewExtensions()
	ext.Insert(extA("one"))

	defer func() {
		v := recover()
		require.NotNil(t, v)
		require.True(t, IsAssertionViolation(v))
	}()

	ext.Insert(extA("two"))
}

func TestTakeExtension(t *testing.T) {
	ext := NewExtensions()
	ext.Set(extB(7))

	b, ok := TakeExtension[extB](ext)
	require.True(t, ok)
	require.Equal(t, extB(7), b)

	_, ok = TakeExtension[extB](ext)
	require.False(t, ok)
}

func TestSharedExtensionsToOwned(t *testing.T) {
	ext := NewExtensions()
	ext.Set(extA("shared"))

	borrowed := shareExtensions(ext)
	require.False(t, borrowed.IsOwned())
	require.Same(t, ext, borrowed.View())

	owned := borrowed.ToOwned()
	require.True(t, owned.IsOwned())
	require.NotSame(t, ext, owned.View())

	// mutating the owned copy leaves the original alone
	owned.View().Set(extA("mine"))
	orig, _ := ExtensionFrom[extA](ext)
	require.Equal(t, extA("shared"), orig)

	require.Same(t, owned.View(), owned.ToOwned().View())
}

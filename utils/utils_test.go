// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitSubDirectory(t *testing.T) {
	require := require.New(t)

	root := t.TempDir()
	p, err := InitSubDirectory(root, "statedb")
	require.NoError(err)
	require.Equal(filepath.Join(root, "statedb"), p)
	info, err := os.Stat(p)
	require.NoError(err)
	require.True(info.IsDir())

	// Existing directories are fine.
	_, err = InitSubDirectory(root, "statedb")
	require.NoError(err)
}

func TestHostPort(t *testing.T) {
	require := require.New(t)

	host, port, err := HostPort("http://127.0.0.1:9650/ext/hypercw")
	require.NoError(err)
	require.Equal("127.0.0.1", host)
	require.Equal("9650", port)

	_, _, err = HostPort("http://localhost/ext")
	require.Error(err)
}

func TestMap(t *testing.T) {
	require := require.New(t)

	require.Equal([]string{"1", "2", "3"}, Map(strconv.Itoa, []int{1, 2, 3}))
	require.Empty(Map(strconv.Itoa, nil))
}

func TestBoundedBuffer(t *testing.T) {
	require := require.New(t)

	_, err := NewBoundedBuffer[int](0, nil)
	require.ErrorIs(err, errInvalidMaxSize)

	var evicted []int
	b, err := NewBoundedBuffer(2, func(i int) { evicted = append(evicted, i) })
	require.NoError(err)
	_, ok := b.Last()
	require.False(ok)

	for i := 1; i <= 4; i++ {
		b.Insert(i)
	}
	require.Equal([]int{3, 4}, b.Items())
	require.Equal([]int{1, 2}, evicted)
	require.Equal(2, b.Len())
	require.Equal(uint64(2), b.Evicted())
	last, ok := b.Last()
	require.True(ok)
	require.Equal(4, last)
}

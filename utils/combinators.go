// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

func Map[T any, R any](f func(T) R, a []T) []R {
	r := make([]R, len(a))
	for i, v := range a {
		r[i] = f(v)
	}
	return r
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/onsi/ginkgo/v2/formatter"
)

// InitSubDirectory creates [rootPath]/[name] if needed and returns it.
func InitSubDirectory(rootPath string, name string) (string, error) {
	p := filepath.Join(rootPath, name)
	return p, os.MkdirAll(p, perms.ReadWriteExecute)
}

// Outf writes a ginkgo formatted string to stdout, e.g.
//
//	Outf("{{green}}{{bold}}instantiated %s{{/}}\n", addr)
func Outf(format string, args ...interface{}) {
	fmt.Fprint(formatter.ColorableStdOut, formatter.F(format, args...))
}

// HostPort returns the host and port of [uri]. The port must be explicit.
func HostPort(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", err
	}
	return net.SplitHostPort(u.Host)
}

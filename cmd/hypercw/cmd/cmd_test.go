// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercw/consts"
)

const plan = `
name: counter
sender: alice
steps:
  - endpoint: instantiate
    code: crates.io:counter-wba
    label: counter
    msg: {count: 5}
  - endpoint: execute
    contract: step_0
    msg: {increment: {}}
  - endpoint: query
    contract: step_0
    msg: {get_count: {}}
    require:
      result: {count: 6}
`

func testConfig(t *testing.T) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := fmt.Sprintf("validator: mock\nlog:\n  directory: %s\n  quiet: true\n", filepath.Join(dir, "logs"))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, consts.Name+"@"+consts.Version+"\n", out)
}

func TestSimulateFromStdin(t *testing.T) {
	require := require.New(t)

	out, err := run(t, plan, "--config", testConfig(t), "simulate", "-")
	require.NoError(err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(lines, 3)
	var last struct {
		Result json.RawMessage `json:"result"`
	}
	require.NoError(json.Unmarshal([]byte(lines[2]), &last))
	require.JSONEq(`{"count":6}`, string(last.Result))
}

func TestSimulateFailedAssertion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(plan, "count: 6", "count: 7", 1)), 0o600))

	_, err := run(t, "", "--config", testConfig(t), "simulate", path)
	require.Error(t, err)
}

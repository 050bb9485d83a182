// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercw/cli/prompt"
	"github.com/ava-labs/hypercw/runtime"
)

func TestDecodeMessage(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"increment":{}}`), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte(`increment`), 0o600))

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "inline",
			input: `{"get_count":{}}`,
			want:  `{"get_count":{}}`,
		},
		{
			name:  "file",
			input: good,
			want:  `{"increment":{}}`,
		},
		{
			name:    "file with invalid json",
			input:   bad,
			wantErr: prompt.ErrInvalidJSON,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			msg, err := decodeMessage("msg", tt.input)
			require.ErrorIs(err, tt.wantErr)
			if tt.wantErr == nil {
				require.JSONEq(tt.want, string(msg))
			}
		})
	}

	_, err := decodeMessage("msg", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestCallResponseString(t *testing.T) {
	require := require.New(t)

	resp := runtime.NewResponse().
		AddAttribute("action", "execute").
		AddMessage(runtime.NewBankSend("hypercw1x", runtime.Coins(5, "uatom")))
	out := callResponse{Address: "hypercw1c", Response: resp}.String()
	require.Contains(out, "✅ Call successful")
	require.Contains(out, "action=execute")
	require.Contains(out, "msg[0] bank:")

	out = callResponse{Address: "hypercw1c", Error: "unauthorized"}.String()
	require.Contains(out, "❌ Call failed: unauthorized")
}

func TestMessageArg(t *testing.T) {
	require := require.New(t)
	require.Equal("a", messageArg([]string{"a"}, 0))
	require.Empty(messageArg([]string{"a"}, 1))
}

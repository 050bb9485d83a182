// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ava-labs/hypercw/address"
	"github.com/ava-labs/hypercw/cli/prompt"
	"github.com/ava-labs/hypercw/consts"
)

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error getting home directory:", err)
		os.Exit(1)
	}

	configDir := filepath.Join(homeDir, ".hypercw-cli")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "Error creating config directory:", err)
		os.Exit(1)
	}

	configFile := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if _, err := os.Create(configFile); err != nil {
			fmt.Fprintln(os.Stderr, "Error creating config file:", err)
			os.Exit(1)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config:", err)
			os.Exit(1)
		}
	}
}

func isJSONOutputRequested(cmd *cobra.Command) (bool, error) {
	output, err := getConfigValue(cmd, "output", false)
	if err != nil {
		return false, fmt.Errorf("failed to get output format: %w", err)
	}
	return strings.ToLower(output) == "json", nil
}

func printValue(cmd *cobra.Command, v fmt.Stringer) error {
	isJSON, err := isJSONOutputRequested(cmd)
	if err != nil {
		return err
	}

	if isJSON {
		jsonBytes, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.String())
	return nil
}

func getConfigValue(cmd *cobra.Command, key string, required bool) (string, error) {
	if value, err := cmd.Flags().GetString(key); err == nil && value != "" {
		return value, nil
	}

	if value := viper.GetString(key); value != "" {
		return value, nil
	}

	if required {
		return "", fmt.Errorf("required value for %s not found", key)
	}

	return "", nil
}

func setConfigValue(key, value string) error {
	viper.Set(key, value)
	return viper.WriteConfig()
}

// getSender resolves the sender from the flag or config, prompting when
// neither is set.
func getSender(cmd *cobra.Command) (string, error) {
	sender, err := getConfigValue(cmd, "sender", false)
	if err != nil {
		return "", err
	}
	if sender != "" {
		return sender, nil
	}
	return prompt.Address("sender", address.NewBech32(consts.HRP))
}

// decodeMessage accepts inline JSON, a path to a JSON file, or "" to prompt.
func decodeMessage(label string, inlineOrFile string) (json.RawMessage, error) {
	if inlineOrFile == "" {
		return prompt.Message(label)
	}
	if json.Valid([]byte(inlineOrFile)) {
		return json.RawMessage(inlineOrFile), nil
	}
	if fileContents, err := os.ReadFile(inlineOrFile); err == nil {
		if !json.Valid(fileContents) {
			return nil, fmt.Errorf("%w: %s", prompt.ErrInvalidJSON, inlineOrFile)
		}
		return fileContents, nil
	}
	return nil, errors.New("unable to decode input as JSON, or read as file path")
}

func messageArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

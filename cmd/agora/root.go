// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/agorafed/agora/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Agora CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agora",
		Short: "Agora - accounts, auth and private messaging for a federated link aggregator",
		Long: `Agora serves the account, authentication, moderation and private
messaging commands of a federated link aggregator over HTTP, with live
updates streamed to connected sessions.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: $XDG_CONFIG_HOME/agora/config.yaml or /etc/agora/config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// configPath returns the --config value, falling back to the XDG locations.
func configPath() string {
	if configFile != "" {
		return configFile
	}
	return xdg.ConfigFile()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package xdg locates Agora's configuration under the XDG Base Directory
// layout.
package xdg

import (
	"os"
	"path/filepath"
)

const (
	appName    = "agora"
	configName = "config.yaml"
	systemDir  = "/etc/agora"
)

// ConfigDir returns the per-user config directory. XDG_CONFIG_HOME wins over
// ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// ConfigFile returns the first existing config file among the per-user and
// system locations, or "" when there is none.
func ConfigFile() string {
	for _, dir := range []string{ConfigDir(), systemDir} {
		path := filepath.Join(dir, configName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

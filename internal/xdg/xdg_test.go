// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDir_EnvVar(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	assert.Equal(t, "/custom/config/agora", ConfigDir())
}

func TestConfigDir_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/testuser")

	assert.Equal(t, "/home/testuser/.config/agora", ConfigDir())
}

func TestConfigFile_FindsUserConfig(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	dir := filepath.Join(base, "agora")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hostname: agora.test\n"), 0o600))

	assert.Equal(t, path, ConfigFile())
}

func TestConfigFile_IgnoresDirectories(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "agora", "config.yaml"), 0o700))

	got := ConfigFile()
	assert.NotEqual(t, filepath.Join(base, "agora", "config.yaml"), got)
}

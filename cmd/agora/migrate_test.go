// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agorafed/agora/pkg/errutil"
)

func TestParseForceVersion(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantVersion int
		wantErr     bool
	}{
		{name: "valid integer", input: "3", wantVersion: 3},
		{name: "zero is valid", input: "0", wantVersion: 0},
		{name: "surrounding whitespace is trimmed", input: "  42 ", wantVersion: 42},
		{name: "non-numeric", input: "abc", wantErr: true},
		{name: "trailing characters", input: "3abc", wantErr: true},
		{name: "float", input: "1.5", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, err := parseForceVersion(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "INVALID_VERSION")
				assert.Equal(t, 0, version)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}

func TestGetDatabaseURL(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	t.Run("empty", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		url, err := getDatabaseURL()

		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
		assert.Empty(t, url)
	})

	t.Run("set", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/agora")

		url, err := getDatabaseURL()

		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost:5432/agora", url)
	})
}

type fakeMigrator struct {
	version uint
	dirty   bool
	pending []uint
	upErr   error
	forced  *int
	ups     int
	closed  bool
}

func (f *fakeMigrator) Up() error {
	f.ups++
	return f.upErr
}
func (f *fakeMigrator) Down() error                  { return nil }
func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, f.dirty, nil }
func (f *fakeMigrator) Force(v int) error            { f.forced = &v; return nil }
func (f *fakeMigrator) Pending() ([]uint, error)     { return f.pending, nil }
func (f *fakeMigrator) Close() error                 { f.closed = true; return nil }

func runMigrate(t *testing.T, fake *fakeMigrator, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/agora")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	orig := newMigrator
	newMigrator = func(string) (migrationRunner, error) { return fake, nil }
	t.Cleanup(func() { newMigrator = orig })

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"migrate"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestMigrateUp(t *testing.T) {
	t.Run("applies pending", func(t *testing.T) {
		fake := &fakeMigrator{pending: []uint{1, 2}}

		out, err := runMigrate(t, fake, "up")

		require.NoError(t, err)
		assert.Equal(t, 1, fake.ups)
		assert.True(t, fake.closed)
		assert.Contains(t, out, "Applying 2 migration(s)")
	})

	t.Run("nothing pending", func(t *testing.T) {
		fake := &fakeMigrator{}

		out, err := runMigrate(t, fake, "up")

		require.NoError(t, err)
		assert.Zero(t, fake.ups)
		assert.Contains(t, out, "No pending migrations")
	})

	t.Run("failure", func(t *testing.T) {
		fake := &fakeMigrator{pending: []uint{1}, upErr: errors.New("syntax error")}

		_, err := runMigrate(t, fake, "up")

		assert.Error(t, err)
		assert.True(t, fake.closed)
	})
}

func TestMigrateStatus_ReportsDirtySchema(t *testing.T) {
	fake := &fakeMigrator{version: 2, dirty: true, pending: []uint{3}}

	out, err := runMigrate(t, fake, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 2")
	assert.Contains(t, out, "dirty")
	assert.Contains(t, out, "Pending: 1")
}

func TestMigrateForce(t *testing.T) {
	fake := &fakeMigrator{}

	_, err := runMigrate(t, fake, "force", "4")

	require.NoError(t, err)
	require.NotNil(t, fake.forced)
	assert.Equal(t, 4, *fake.forced)
}

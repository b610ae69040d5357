// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, "MZDiK Radom", c.Agency.Name)
	assert.Equal(t, "14", c.Region)
	assert.Equal(t, 365, c.ScheduleLengthDays)
	assert.False(t, c.Publisher.IsSet())

	require.Len(t, c.Fares, 3)
	assert.Nil(t, c.Fares[0].Transfers)
	require.NotNil(t, c.Fares[0].TransferDuration)
	assert.Equal(t, 3600, *c.Fares[0].TransferDuration)
	require.NotNil(t, c.Fares[2].Transfers)
	assert.Equal(t, 0, *c.Fares[2].Transfers)

	ignored := c.IgnoredStops()
	assert.Equal(t, 15, ignored.Len())
	assert.True(t, ignored.Has(1225))
	assert.True(t, ignored.Has(649))
	assert.False(t, ignored.Has(650))
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("region: \"7\"\npublisher:\n  name: Foo\n  url: https://example.com/\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7", c.Region)
	assert.Equal(t, "Foo", c.Publisher.Name)
	assert.Equal(t, "pl", c.Publisher.Lang)
	assert.True(t, c.Publisher.IsSet())
	assert.Equal(t, "MZDiK Radom", c.Agency.Name)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv(EnvPublisherName, "Bar")
	t.Setenv(EnvPublisherURL, "https://example.org/")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Bar", c.Publisher.Name)
	assert.Equal(t, "https://example.org/", c.Publisher.URL)
}

func TestLoadEnvironmentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publisher_url")
	require.NoError(t, os.WriteFile(path, []byte("https://example.com/\n"), 0o644))
	t.Setenv(EnvPublisherName, "Foo")
	t.Setenv(EnvPublisherURL+"_FILE", path)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Foo", c.Publisher.Name)
	assert.Equal(t, "https://example.com/", c.Publisher.URL)
}

func TestLoadEnvironmentMissingFile(t *testing.T) {
	t.Setenv(EnvPublisherURL+"_FILE", filepath.Join(t.TempDir(), "nope"))

	_, err := Load("")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("route_style:\n  color: red\n"), 0o644))

	_, err := Load(path)
	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

package util

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestReadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := ReadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultSourceURL, cfg.Source.URL)
	assert.Equal(t, DefaultSourceLocal, cfg.Source.Local)
	assert.InDelta(t, DefaultPadding, cfg.Region.Padding, 1e-12)
	assert.Equal(t, DefaultProfile, cfg.Routing.Profile)
	assert.Equal(t, DefaultTurnPenalty, cfg.Routing.TurnPenalty)
	assert.InDelta(t, DefaultMappingRadius, cfg.Routing.MappingRadius, 1e-9)
}

func TestReadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := []byte("source:\n  local: luxembourg.osm.pbf\nrouting:\n  profile: car\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	t.Setenv("STREETSCAN_ROUTING_TURN_PENALTY", "120")

	cfg, err := ReadConfig()
	require.NoError(t, err)

	assert.Equal(t, "luxembourg.osm.pbf", cfg.Source.Local)
	assert.Equal(t, "car", cfg.Routing.Profile)
	assert.Equal(t, 120, cfg.Routing.TurnPenalty)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := []byte("routing:\n  mapping_radius: -5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	_, err := ReadConfig()
	assert.Error(t, err)
}

func TestWrapErrorfCode(t *testing.T) {
	orig := errors.New("boom")
	err := WrapErrorf(orig, ErrInputNotFound, "input file %s not found", "a.csv")

	assert.Equal(t, ErrInputNotFound, ErrorCode(err))
	assert.ErrorIs(t, err, orig)
	assert.Contains(t, err.Error(), "a.csv")
	assert.Nil(t, ErrorCode(orig))
}

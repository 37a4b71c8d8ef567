package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFileWritesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gones.json")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.IsLoaded(), "a freshly written default config was not itself loaded from disk")

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadFromFileRoundTripsSavedValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gones.json")

	original := New()
	original.Window.Scale = 4
	require.NoError(t, original.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, loaded.IsLoaded())
	assert.Equal(t, 4, loaded.Window.Scale)
}

func TestInvalidScaleIsCorrectedToOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gones.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"window":{"scale":0}}`), 0644))
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Window.Scale)
}

func TestWindowResolutionScalesNativeNESFrame(t *testing.T) {
	cfg := New()
	cfg.Window.Scale = 3
	w, h := cfg.WindowResolution()
	assert.Equal(t, 768, w)
	assert.Equal(t, 720, h)
}

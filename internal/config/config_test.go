package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_OverridesAndPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"overlay_width_ratio":0.4,"nudge_step_fast":16,"max_upload":"2MiB"}`), 0o600))
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.4, cfg.OverlayWidthRatio)
	assert.Equal(t, 16.0, cfg.NudgeStepFast)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes())
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_NormalizesOutOfRange(t *testing.T) {
	cfg := &Config{OverlayWidthRatio: 3, NudgeStep: -1, MaxPixelRatio: 0.5, MaxPixels: -1}
	require.NoError(t, cfg.Validate())
	d := DefaultConfig()
	assert.Equal(t, d.MaxPixels, cfg.MaxPixels)
	assert.Equal(t, d.OverlayWidthRatio, cfg.OverlayWidthRatio)
	assert.Equal(t, d.NudgeStep, cfg.NudgeStep)
	assert.Equal(t, d.MaxPixelRatio, cfg.MaxPixelRatio)
	assert.Equal(t, d.ExportFilename, cfg.ExportFilename)
}

func TestValidate_BadUploadLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUpload = "lots"
	require.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

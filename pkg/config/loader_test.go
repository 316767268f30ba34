package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Settings.SessionLength)
	assert.Equal(t, 3, cfg.Settings.NumberOfNewProblems)
	assert.True(t, cfg.Settings.FlexibleSchedule)
	assert.Equal(t, 40, cfg.Settings.ReviewRatio)
	assert.Equal(t, models.DifficultyHard, cfg.Settings.DifficultyCap)
	assert.Equal(t, 30, cfg.Settings.MinReviewRatio)
}

func TestInitialize_YAMLOverride(t *testing.T) {
	dir := t.TempDir()
	content := []byte("session_length: 8\nreview_ratio: 20\ndifficulty_cap: Medium\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), content, 0o644))

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Settings.SessionLength)
	assert.Equal(t, 20, cfg.Settings.ReviewRatio)
	assert.Equal(t, models.DifficultyMedium, cfg.Settings.DifficultyCap)
	// Untouched fields keep their defaults.
	assert.Equal(t, 3, cfg.Settings.NumberOfNewProblems)
}

func TestInitialize_InvalidSessionLength(t *testing.T) {
	dir := t.TempDir()
	content := []byte("session_length: 20\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), content, 0o644))

	_, err := Initialize(context.Background(), dir)
	require.Error(t, err)
}

func TestInitialize_InvalidDifficultyCap(t *testing.T) {
	dir := t.TempDir()
	content := []byte("difficulty_cap: Extreme\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), content, 0o644))

	_, err := Initialize(context.Background(), dir)
	require.Error(t, err)
}

func TestValidator_NumberOfNewProblemsExceedsSessionLength(t *testing.T) {
	cfg := &Config{Settings: &Settings{
		SessionLength:       5,
		NumberOfNewProblems: 6,
		ReviewRatio:         40,
		MinReviewRatio:      30,
		DifficultyCap:       models.DifficultyHard,
	}}

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "number_of_new_problems")
}

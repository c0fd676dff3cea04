package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules_MissingFileReturnsDefaults(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules_OverridesKeepOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	body := "quality:\n  max_fee: 250\nmistakes:\n  rsi_overbought: 80\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 250.0, rules.Quality.MaxFee)
	assert.Equal(t, 80.0, rules.Mistakes.RSIOverbought)
	assert.Equal(t, 1_000_000.0, rules.Quality.MaxPrice)
	assert.Equal(t, 14, rules.Mistakes.RSIPeriod)
}

func TestLoadRules_InvalidThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mistakes:\n  rsi_oversold: 90\n"), 0o600))

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rsi_oversold")
}

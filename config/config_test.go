package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyParamsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
short_enabled: false
pending_ttl: 5
strategy:
  slope_pct: 0.008
  latch_bars: 15
risk:
  trade_stake: 2500
  long:
    tp_atr_mult: 1.5
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyParamsFile(path))

	// overridden values
	assert.False(t, cfg.Run.ShortEnabled)
	assert.Equal(t, 5, cfg.Run.PendingTTL)
	assert.InDelta(t, 0.008, cfg.Run.Strategy.SlopePct, 1e-12)
	assert.Equal(t, 15, cfg.Run.Strategy.LatchBars)
	assert.InDelta(t, 2500.0, cfg.Run.Risk.TradeStake, 1e-12)
	assert.InDelta(t, 1.5, cfg.Run.Risk.Long.TPATRMult, 1e-12)

	// untouched values keep their defaults
	assert.True(t, cfg.Run.LongEnabled)
	assert.Equal(t, 4, cfg.Run.Strategy.Lookback)
	assert.Equal(t, 8, cfg.Run.Strategy.MinSignalGap)
	assert.InDelta(t, 0.25, cfg.Run.Risk.Long.SLATRMult, 1e-12)
	assert.InDelta(t, 1.0, cfg.Run.Risk.Short.TPATRMult, 1e-12)
}

func TestApplyParamsFileErrors(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.ApplyParamsFile(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("strategy: ["), 0o644))
	assert.Error(t, cfg.ApplyParamsFile(bad))
}

func TestDatabaseConfig(t *testing.T) {
	d := DatabaseConfig{Host: "localhost", Port: 5432, User: "bot", Password: "pw", DBName: "runs"}
	assert.True(t, d.Enabled())
	assert.Contains(t, d.DSN(), "host=localhost")
	assert.Contains(t, d.DSN(), "port=5432")

	assert.False(t, DatabaseConfig{}.Enabled())
}

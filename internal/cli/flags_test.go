package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/embody/internal/embody"
	"github.com/roach88/embody/internal/engine"
	"github.com/roach88/embody/internal/value"
)

func TestParamFlag_Set(t *testing.T) {
	tests := []struct {
		arg  string
		name string
		want value.Value
	}{
		{"port=5432", "port", value.Int(5432)},
		{"ratio=0.5", "ratio", value.Float(0.5)},
		{"debug=true", "debug", value.Bool(true)},
		{"none=null", "none", value.Null{}},
		{"host=db.internal", "host", value.String("db.internal")},
		{`quoted="5432"`, "quoted", value.String("5432")},
		{"empty=", "empty", value.String("")},
		{"expr=a=b", "expr", value.String("a=b")},
		{`tags=["a","b"]`, "tags", value.NewSeq(value.String("a"), value.String("b"))},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			f := newParamFlag()
			require.NoError(t, f.Set(tt.arg))
			assert.True(t, value.Equal(tt.want, f.values[tt.name]), "got %#v", f.values[tt.name])
		})
	}
}

func TestParamFlag_Rejects(t *testing.T) {
	for _, arg := range []string{"novalue", "=value", ""} {
		t.Run(arg, func(t *testing.T) {
			assert.Error(t, newParamFlag().Set(arg))
		})
	}
}

func TestParamFlag_String(t *testing.T) {
	f := newParamFlag()
	assert.Equal(t, "", f.String())

	require.NoError(t, f.Set("b=2"))
	require.NoError(t, f.Set("a=x"))
	require.NoError(t, f.Set("b=3"))
	assert.Equal(t, "a=x,b=3", f.String())
}

func newFlagSet(t *testing.T, f *EmbodyFlags, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.bind(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestEmbodyFlags_Defaults(t *testing.T) {
	var f EmbodyFlags
	cfg, err := f.Config(newFlagSet(t, &f))
	require.NoError(t, err)
	assert.Equal(t, embody.DefaultConfig(), cfg)
}

func TestEmbodyFlags_ConfigFilePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embody.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
syntax: brace
strict: true
strategy: iterative
check_cycles: false
key_collision: namespace
cache_size: 8
`), 0o644))

	var f EmbodyFlags
	cfg, err := f.Config(newFlagSet(t, &f, "--config", path, "--strategy", "compiled", "--cache-size", "0"))
	require.NoError(t, err)

	assert.Equal(t, "brace", cfg.Syntax)
	assert.True(t, cfg.Strict)
	assert.False(t, cfg.CheckCycles)
	assert.Equal(t, engine.CollisionNamespace, cfg.KeyCollision)
	assert.Equal(t, engine.StrategyCompiled, cfg.Strategy, "flag beats file")
	assert.Equal(t, 0, cfg.CacheSize, "flag beats file")
}

func TestEmbodyFlags_EmptyConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embody.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	var f EmbodyFlags
	cfg, err := f.Config(newFlagSet(t, &f, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, embody.DefaultConfig(), cfg)
}

func TestEmbodyFlags_ConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("cache: 3\n"), 0o644))

	var f EmbodyFlags
	_, err := f.Config(newFlagSet(t, &f, "--config", unknown))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigFile)
	assert.Contains(t, err.Error(), "field cache not found")

	var g EmbodyFlags
	_, err = g.Config(newFlagSet(t, &g, "--config", filepath.Join(dir, "missing.yaml")))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

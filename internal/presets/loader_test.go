package presets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropcast/internal/engine"
)

func TestBuiltinsValidate(t *testing.T) {
	for _, p := range Builtins() {
		t.Run(p.Name, func(t *testing.T) {
			require.NotEmpty(t, p.Description)
			assert.Equal(t, p.Kind, p.Params.Kind())
			assert.Empty(t, engine.Validate(p.Params))
		})
	}
}

func TestLoaderMissingDir(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "nope"))
	all, err := l.All()
	require.NoError(t, err)
	assert.Len(t, all, len(Builtins()), "missing dir should fall back to built-ins")
}

func TestLoaderReadsYAMLPresets(t *testing.T) {
	dir := t.TempDir()
	doc := `name: launch-week
description: Fixed estimate for launch week.
kind: fixedFormula
params:
  supplyCount: 8888
  numSimulations: 200000
  seed: 42
  fdv: {min: 20, max: 100, shape: uniform}
  drop: {min: 5, max: 25, shape: linearDecreasing}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launch.yaml"), []byte(doc), 0o644))

	l := NewLoader(dir)
	p, err := l.Find("launch-week")
	require.NoError(t, err)

	fixed, ok := p.Params.(engine.FixedParams)
	require.True(t, ok, "decoded %T", p.Params)
	assert.Equal(t, 8888.0, fixed.SupplyCount)
	assert.Equal(t, 200000, fixed.NumSimulations)
	require.NotNil(t, fixed.Seed)
	assert.Equal(t, uint32(42), *fixed.Seed)
	assert.Equal(t, 25.0, fixed.Drop.Max)
}

func TestLoaderNamesPresetAfterFile(t *testing.T) {
	dir := t.TempDir()
	doc := `kind: autoShaped
params:
  supplyCount: 5000
  numSimulations: 2000
  fdvMin: 50
  fdvMax: 900
  dropMinPct: 1
  dropMaxPct: 9
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wide-open.yml"), []byte(doc), 0o644))

	l := NewLoader(dir)
	_, err := l.Find("wide-open")
	assert.NoError(t, err)
}

func TestLoaderShadowsBuiltins(t *testing.T) {
	dir := t.TempDir()
	doc := `name: balanced
kind: autoShaped
params:
  supplyCount: 123
  numSimulations: 2000
  fdvMin: 10
  fdvMax: 90
  dropMinPct: 1
  dropMaxPct: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "balanced.yaml"), []byte(doc), 0o644))

	l := NewLoader(dir)
	all, err := l.All()
	require.NoError(t, err)
	assert.Len(t, all, len(Builtins()), "shadowing must not duplicate names")

	p, err := l.Find("balanced")
	require.NoError(t, err)
	assert.Equal(t, engine.KindAuto, p.Kind, "file preset should win over the built-in")
}

func TestLoaderRejectsInvalidPreset(t *testing.T) {
	dir := t.TempDir()
	doc := `name: broken
kind: autoShaped
params:
  supplyCount: 5000
  numSimulations: 10
  fdvMin: 50
  fdvMax: 900
  dropMinPct: 1
  dropMaxPct: 9
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(doc), 0o644))

	_, err := NewLoader(dir).All()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestLoaderRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "odd.yaml"), []byte("kind: quantum\nparams: {}\n"), 0o644))
	_, err := NewLoader(dir).All()
	assert.Error(t, err)
}

func TestLoaderCachesUntilInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.yaml")
	doc := `name: mine
kind: autoShaped
params:
  supplyCount: 5000
  numSimulations: 2000
  fdvMin: 50
  fdvMax: 900
  dropMinPct: 1
  dropMaxPct: 9
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	l := NewLoader(dir)
	_, err := l.Find("mine")
	require.NoError(t, err)

	// Changing the file is invisible until the cache is dropped.
	require.NoError(t, os.Remove(path))
	_, err = l.Find("mine")
	assert.NoError(t, err, "cache should still serve the removed file")

	l.Invalidate()
	_, err = l.Find("mine")
	assert.Error(t, err)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-quake-map/internal/config"
)

const quakesFile = `{"type":"FeatureCollection","features":[
	{"type":"Feature","id":"a","properties":{"magnitude":6.2,"depth":15,"title":"M 6.2","age":"Past Hour"},
	 "geometry":{"type":"Point","coordinates":[139.7,35.7]}},
	{"type":"Feature","id":"b","properties":{"magnitude":4.8,"depth":320,"title":"M 4.8","age":"Older"},
	 "geometry":{"type":"Point","coordinates":[-72.5,-33.0]}}
]}`

func TestRenderCommand(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	dir := t.TempDir()
	in := filepath.Join(dir, "quakes.geojson")
	out := filepath.Join(dir, "map.png")
	require.NoError(t, os.WriteFile(in, []byte(quakesFile), 0o644))

	cmd := newRootCmd(cfg)
	cmd.SetArgs([]string{"--in", in, "--out", out, "--width", "400", "--height", "300", "--threat", "--select", "a"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestRenderCommand_MissingInput(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	cmd := newRootCmd(cfg)
	cmd.SetArgs([]string{"--in", filepath.Join(t.TempDir(), "nope.geojson"), "--out", filepath.Join(t.TempDir(), "x.png")})
	cmd.SetErr(new(bytes.Buffer))
	assert.Error(t, cmd.Execute())
}

func TestRenderCommand_InvalidSize(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	dir := t.TempDir()
	in := filepath.Join(dir, "quakes.geojson")
	require.NoError(t, os.WriteFile(in, []byte(quakesFile), 0o644))

	cmd := newRootCmd(cfg)
	cmd.SetArgs([]string{"--in", in, "--out", filepath.Join(dir, "x.png"), "--width", "0"})
	cmd.SetErr(new(bytes.Buffer))
	assert.Error(t, cmd.Execute())
}

package render

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSVG(t *testing.T) {
	reg := scenarioRegistry(t)
	o := NewOverlay(reg, NewRenderer(DefaultStyle()), nil)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, 200, 150, o.Hook()))
	out := buf.String()
	assert.True(t, strings.Contains(out, "<svg"), "not an svg document")
	assert.Contains(t, out, "Start")
}

func TestWritePNG(t *testing.T) {
	reg := scenarioRegistry(t)
	o := NewOverlay(reg, NewRenderer(DefaultStyle()), nil)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, 200, 150, color.White, o.Hook()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestWriteRasterPNG(t *testing.T) {
	reg := scenarioRegistry(t)
	o := NewOverlay(reg, NewRenderer(DefaultStyle()), nil)

	var buf bytes.Buffer
	require.NoError(t, WriteRasterPNG(&buf, 160, 120, nil, o.Hook()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())

	_, _, _, a := img.At(50, 50).RGBA()
	assert.NotZero(t, a, "path should cover the midpoint of the diagonal")
	_, _, _, a = img.At(150, 10).RGBA()
	assert.Zero(t, a, "background should stay transparent")
}

func TestSceneFrameJSON(t *testing.T) {
	scene := NewScene(320, 240)
	scene.Clear()

	raw, err := json.Marshal(scene.Frame())
	require.NoError(t, err)
	assert.JSONEq(t, `{"width":320,"height":240,"clears":1,"ops":[]}`, string(raw))

	reg := scenarioRegistry(t)
	NewOverlay(reg, NewRenderer(DefaultStyle()), nil).RenderFrame(scene)
	raw, err = json.Marshal(scene.Frame())
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, 2, frame.Clears)
	assert.Len(t, frame.Ops, 9)
	assert.Equal(t, OpPolyline, frame.Ops[0].Kind)
}

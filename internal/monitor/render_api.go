package monitor

import (
	"bytes"
	"fmt"
	"image/color"
	"net/http"
	"strconv"

	"github.com/banshee-data/movement.trails/internal/httputil"
	"github.com/banshee-data/movement.trails/internal/trails/render"
)

const (
	defaultFrameWidth  = 800
	defaultFrameHeight = 600
	maxFrameSize       = 4096
)

// frameParams reads width, height and an optional background colour from
// the query string.
func frameParams(r *http.Request) (width, height int, background color.Color, err error) {
	width, height = defaultFrameWidth, defaultFrameHeight
	q := r.URL.Query()
	if v := q.Get("width"); v != "" {
		if width, err = strconv.Atoi(v); err != nil || width <= 0 || width > maxFrameSize {
			return 0, 0, nil, fmt.Errorf("width must be between 1 and %d", maxFrameSize)
		}
	}
	if v := q.Get("height"); v != "" {
		if height, err = strconv.Atoi(v); err != nil || height <= 0 || height > maxFrameSize {
			return 0, 0, nil, fmt.Errorf("height must be between 1 and %d", maxFrameSize)
		}
	}
	if v := q.Get("background"); v != "" {
		c, perr := render.ParseColor(v)
		if perr != nil {
			return 0, 0, nil, fmt.Errorf("background: %w", perr)
		}
		background = c
	}
	return width, height, background, nil
}

// handleScene returns the draw operations of one frame as JSON, for hosts
// that draw on their own canvas.
func (ws *WebServer) handleScene(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodGet) {
		return
	}
	width, height, _, err := frameParams(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	scene := render.NewScene(float64(width), float64(height))
	ws.overlay.RenderFrame(scene)
	httputil.WriteJSONOK(w, scene.Frame())
}

func (ws *WebServer) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	ws.writeFrame(w, r, "image/svg+xml", func(buf *bytes.Buffer, width, height int, _ color.Color) error {
		return render.WriteSVG(buf, float64(width), float64(height), ws.overlay.Hook())
	})
}

func (ws *WebServer) handleRenderPNG(w http.ResponseWriter, r *http.Request) {
	ws.writeFrame(w, r, "image/png", func(buf *bytes.Buffer, width, height int, bg color.Color) error {
		return render.WritePNG(buf, float64(width), float64(height), bg, ws.overlay.Hook())
	})
}

func (ws *WebServer) handleRasterPNG(w http.ResponseWriter, r *http.Request) {
	ws.writeFrame(w, r, "image/png", func(buf *bytes.Buffer, width, height int, bg color.Color) error {
		return render.WriteRasterPNG(buf, width, height, bg, ws.overlay.Hook())
	})
}

// writeFrame renders into a buffer so a failure can still be reported as a
// JSON error.
func (ws *WebServer) writeFrame(w http.ResponseWriter, r *http.Request, contentType string,
	encode func(buf *bytes.Buffer, width, height int, bg color.Color) error) {
	if !httputil.RequireMethod(w, r, http.MethodGet) {
		return
	}
	width, height, bg, err := frameParams(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := encode(&buf, width, height, bg); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

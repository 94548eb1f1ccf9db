package monitor

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"tailscale.com/tsweb"

	"github.com/banshee-data/movement.trails/internal/httputil"
	"github.com/banshee-data/movement.trails/internal/trails"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// attachAdminRoutes adds the debug pages under /debug/. tsweb limits them to
// localhost and the tailnet.
func (ws *WebServer) attachAdminRoutes(mux *http.ServeMux) {
	if ws.status != nil {
		ws.status.AttachAdminRoutes(mux)
	}
	debug := tsweb.Debugger(mux)
	debug.HandleFunc("trails-dwells", "stationary periods per tracked subject", ws.handleDwellChart)
	debug.HandleFunc("trails-paths", "sampled trail paths", ws.handlePathChart)
	debug.HandleSilentFunc("trails-preview", ws.handleRenderSVG)
}

// handleDwellChart plots every dwell as a point of start time against
// duration, one series per subject.
func (ws *WebServer) handleDwellChart(w http.ResponseWriter, r *http.Request) {
	snaps := ws.registry.Snapshots()

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trail dwells", Theme: "dark", Width: "100%", Height: "720px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Stationary periods", Subtitle: fmt.Sprintf("session=%s trails=%d", ws.registry.SessionID(), len(snaps))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "started (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "duration (s)", NameLocation: "middle", NameGap: 30}),
	)

	for _, snap := range snaps {
		data := make([]opts.ScatterData, 0, len(snap.Dwells))
		var origin int64
		if len(snap.Samples) > 0 {
			origin = snap.Samples[0].CapturedAtMs
		}
		for _, d := range snap.Dwells {
			data = append(data, opts.ScatterData{
				Value: []interface{}{float64(d.StartedAtMs-origin) / 1000, float64(d.DurationMs) / 1000},
			})
		}
		scatter.AddSeries(snap.DisplayName(), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: snap.Color}))
	}

	writeChart(w, scatter)
}

// handlePathChart plots each trail's sampled positions in page coordinates.
func (ws *WebServer) handlePathChart(w http.ResponseWriter, r *http.Request) {
	snaps := ws.registry.Snapshots()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trail paths", Theme: "dark", Width: "100%", Height: "720px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Trail paths", Subtitle: fmt.Sprintf("session=%s", ws.registry.SessionID())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "x (px)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "y (px)"}),
	)

	for _, snap := range snaps {
		data := make([]opts.LineData, 0, len(snap.Samples))
		for _, s := range snap.Samples {
			data = append(data, opts.LineData{Value: []interface{}{s.X, s.Y}})
		}
		line.AddSeries(snap.DisplayName(), data,
			charts.WithLineStyleOpts(opts.LineStyle{Color: snap.Color}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: snap.Color}))
	}

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.AddCharts(line)
	writeChart(w, page)
}

type renderable interface {
	Render(w io.Writer) error
}

func writeChart(w http.ResponseWriter, c renderable) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		trails.Diagf("chart render failed: %v", err)
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

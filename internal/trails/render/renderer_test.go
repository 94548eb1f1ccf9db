package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/movement.trails/internal/trails"
)

func scenarioRegistry(t *testing.T) *trails.Registry {
	t.Helper()
	r := trails.NewRegistry(trails.DefaultConfig())
	r.StartTracking("p1", "#7D2027", nil)
	for _, s := range []trails.Sample{
		{X: 0, Y: 0, CapturedAtMs: 0},
		{X: 0, Y: 0, CapturedAtMs: 0},
		{X: 0, Y: 0, CapturedAtMs: 600},
		{X: 100, Y: 100, CapturedAtMs: 700},
	} {
		r.AppendSample("p1", s)
	}
	return r
}

func kinds(ops []Op) []OpKind {
	out := make([]OpKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}

func TestRenderScenario(t *testing.T) {
	reg := scenarioRegistry(t)
	snap, ok := reg.Snapshot("p1")
	require.True(t, ok)

	scene := NewScene(800, 600)
	NewRenderer(DefaultStyle()).Render(scene, snap)

	assert.Equal(t, 1, scene.Clears())
	ops := scene.Ops()
	wantKinds := []OpKind{
		OpPolyline, OpPolyline, // outline, main
		OpCircle, OpCircle, OpCircle, // position markers
		OpText, OpPolygon, // start label and wedge
		OpCircle, OpCircle, // dwell outline and body
	}
	if diff := cmp.Diff(wantKinds, kinds(ops)); diff != "" {
		t.Fatalf("op kinds mismatch (-want +got):\n%s", diff)
	}

	wantLine := []trails.Point{{X: 0, Y: 0}, {X: 100, Y: 100}}
	if diff := cmp.Diff(wantLine, ops[1].Points); diff != "" {
		t.Errorf("polyline mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "rgba(45, 45, 45, 0.702)", ops[0].Color)
	assert.Equal(t, 6.0, ops[0].Width)
	assert.Equal(t, "rgba(125, 32, 39, 0.8)", ops[1].Color)
	assert.Equal(t, 4.0, ops[1].Width)

	assert.Equal(t, "rgba(125, 32, 39, 0.502)", ops[2].Color)
	assert.Equal(t, 4.0, ops[2].Radius)

	label := ops[5]
	assert.Equal(t, "Start", label.Text)
	assert.Equal(t, &trails.Point{X: 0, Y: -15}, label.At)
	assert.Equal(t, "bold 12px sans-serif", label.Font)
	assert.Equal(t, "rgba(0, 0, 0, 0.8)", label.Outline)
	assert.Equal(t, 3.0, label.OutlineWidth)

	wedge := []trails.Point{{X: 0, Y: -10}, {X: -5, Y: -5}, {X: 5, Y: -5}}
	if diff := cmp.Diff(wedge, ops[6].Points); diff != "" {
		t.Errorf("wedge mismatch (-want +got):\n%s", diff)
	}

	size := DwellMarkerSize(600, DefaultStyle())
	assert.InDelta(t, size+2, ops[7].Radius, 1e-9)
	assert.Equal(t, "rgba(45, 45, 45, 0.702)", ops[7].Color)
	assert.InDelta(t, size, ops[8].Radius, 1e-9)
	assert.Equal(t, "rgba(125, 32, 39, 0.702)", ops[8].Color)
}

func TestRenderDoesNotMutateSnapshot(t *testing.T) {
	reg := scenarioRegistry(t)
	snap, _ := reg.Snapshot("p1")
	before := append([]trails.Sample(nil), snap.Samples...)

	NewRenderer(DefaultStyle()).Render(NewScene(10, 10), snap)

	after, _ := reg.Snapshot("p1")
	assert.Equal(t, before, after.Samples)
}

func TestRenderMarkerTitlesShowReplayTime(t *testing.T) {
	r := trails.NewRegistry(trails.DefaultConfig())
	r.StartTracking("p1", "#7D2027", nil)
	r.AppendSample("p1", trails.Sample{X: 0, Y: 0, CapturedAtMs: 0, ReplayMs: 5_400})
	r.AppendSample("p1", trails.Sample{X: 0, Y: 0, CapturedAtMs: 700, ReplayMs: 6_100})
	r.AppendSample("p1", trails.Sample{X: 50, Y: 0, CapturedAtMs: 900, ReplayMs: 125_000})
	snap, _ := r.Snapshot("p1")

	scene := NewScene(100, 100)
	NewRenderer(DefaultStyle()).Render(scene, snap)

	var titles []string
	for _, op := range scene.Ops() {
		if op.Kind == OpCircle && op.Title != "" {
			titles = append(titles, op.Title)
		}
	}
	want := []string{"Time: 0:05", "Time: 0:06", "Time: 2:05"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("marker titles mismatch (-want +got):\n%s", diff)
	}

	ops := scene.Ops()
	last := ops[len(ops)-1]
	require.Equal(t, OpCircle, last.Kind)
	assert.Empty(t, last.Title, "dwell markers carry no replay time")
}

func TestMarkerTitleBeforeReplayTimeKnown(t *testing.T) {
	assert.Equal(t, "Time: 0:00", MarkerTitle(trails.Sample{X: 1, Y: 1}))
}

func TestRenderHiddenTrail(t *testing.T) {
	tests := []struct {
		name   string
		hide   func(*trails.Registry)
		global bool
	}{
		{name: "trail hidden", hide: func(r *trails.Registry) { r.SetVisible("p1", false) }},
		{name: "globally hidden", hide: func(r *trails.Registry) { r.SetGlobalVisible(false) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := scenarioRegistry(t)
			tt.hide(reg)
			snap, _ := reg.Snapshot("p1")

			scene := NewScene(10, 10)
			NewRenderer(DefaultStyle()).Render(scene, snap)
			assert.Equal(t, 1, scene.Clears())
			assert.Empty(t, scene.Ops())
		})
	}
}

func TestRenderSingleSample(t *testing.T) {
	reg := trails.NewRegistry(trails.DefaultConfig())
	reg.StartTracking("p1", "", nil)
	reg.AppendSample("p1", trails.Sample{X: 5, Y: 5, CapturedAtMs: 1})
	snap, _ := reg.Snapshot("p1")

	scene := NewScene(10, 10)
	NewRenderer(DefaultStyle()).Render(scene, snap)
	assert.Equal(t, []OpKind{OpCircle}, kinds(scene.Ops()), "one sample draws only its marker")
}

func TestRenderLongDwellLabel(t *testing.T) {
	snap := trails.Snapshot{
		Subject:       "p1",
		Color:         "#00ff00",
		Visible:       true,
		GlobalVisible: true,
		Samples:       []trails.Sample{{X: 1, Y: 1}, {X: 1, Y: 1, CapturedAtMs: 5000}},
		Dwells:        []trails.DwellEvent{{X: 1, Y: 1, DurationMs: 5000}},
	}
	scene := NewScene(10, 10)
	NewRenderer(DefaultStyle()).Render(scene, snap)

	ops := scene.Ops()
	last := ops[len(ops)-1]
	assert.Equal(t, OpText, last.Kind)
	assert.Equal(t, "5.0s", last.Text)
	assert.Equal(t, "10px sans-serif", last.Font)
	assert.Empty(t, last.Outline)
	assert.Equal(t, 20.0, ops[len(ops)-2].Radius)

	// All samples coincide, so there is no path to stroke.
	assert.NotContains(t, kinds(ops), OpPolyline)
}

func TestRenderSubjectLabel(t *testing.T) {
	style := DefaultStyle()
	style.LabelWithSubject = true

	reg := scenarioRegistry(t)
	reg.SetLabel("p1", "Jaina")
	snap, _ := reg.Snapshot("p1")

	scene := NewScene(10, 10)
	NewRenderer(style).Render(scene, snap)
	for _, op := range scene.Ops() {
		if op.Kind == OpText {
			assert.Equal(t, "Jaina", op.Text)
			return
		}
	}
	t.Fatal("no label drawn")
}

func TestRenderBadColourFallsBack(t *testing.T) {
	reg := scenarioRegistry(t)
	reg.StartTracking("p1", "not-a-colour", nil)
	snap, _ := reg.Snapshot("p1")

	scene := NewScene(10, 10)
	NewRenderer(DefaultStyle()).Render(scene, snap)
	assert.Equal(t, "rgba(125, 32, 39, 0.8)", scene.Ops()[1].Color)
}

func TestDwellMarkerSize(t *testing.T) {
	st := DefaultStyle()
	tests := []struct {
		durationMs int64
		want       float64
	}{
		{0, 8},
		{500, 8},
		{2750, 14},
		{5000, 20},
		{60000, 20},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, DwellMarkerSize(tt.durationMs, st), 1e-9, "duration %d", tt.durationMs)
	}

	prev := 0.0
	for d := int64(0); d <= 7000; d += 100 {
		got := DwellMarkerSize(d, st)
		assert.GreaterOrEqual(t, got, prev, "size must not shrink at %dms", d)
		prev = got
	}

	st.MaxStationaryTimeMs = st.StationaryThresholdMs
	assert.Equal(t, st.StationaryMarkerMinSize, DwellMarkerSize(10000, st))
}

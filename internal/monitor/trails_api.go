package monitor

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/banshee-data/movement.trails/internal/httputil"
	"github.com/banshee-data/movement.trails/internal/timeutil"
	"github.com/banshee-data/movement.trails/internal/trails"
	"github.com/banshee-data/movement.trails/internal/trails/sampler"
)

type trailView struct {
	trails.Snapshot
	Summary trails.Summary `json:"summary"`
	Active  bool           `json:"active"`

	// ReplayTimes holds each sample's replay time as "m:ss", index-aligned
	// with Samples.
	ReplayTimes []string `json:"replay_times"`
}

func newTrailView(snap trails.Snapshot, active bool) trailView {
	times := make([]string, len(snap.Samples))
	for i, smp := range snap.Samples {
		times[i] = timeutil.FormatReplayTime(float64(smp.ReplayMs) / 1000)
	}
	return trailView{Snapshot: snap, Summary: trails.Summarize(snap), Active: active, ReplayTimes: times}
}

type trailsResponse struct {
	SessionID     string      `json:"session_id"`
	GlobalVisible bool        `json:"global_visible"`
	Trails        []trailView `json:"trails"`
}

type subjectRequest struct {
	Subject string `json:"subject"`
	Color   string `json:"color,omitempty"`
	Label   string `json:"label,omitempty"`
	Visible *bool  `json:"visible,omitempty"`
}

// decodeSubject reads a subjectRequest and requires a subject.
func decodeSubject(w http.ResponseWriter, r *http.Request) (subjectRequest, bool) {
	var req subjectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return req, false
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		httputil.BadRequest(w, "missing subject")
		return req, false
	}
	return req, true
}

func (ws *WebServer) activeSet() map[string]bool {
	active := map[string]bool{}
	if ws.tracker != nil {
		for _, s := range ws.tracker.Active() {
			active[s] = true
		}
	}
	return active
}

// handleTrails lists every trail in drawing order. An optional subject query
// parameter restricts the list to one trail.
func (ws *WebServer) handleTrails(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodGet) {
		return
	}
	active := ws.activeSet()
	only := r.URL.Query().Get("subject")

	resp := trailsResponse{
		SessionID:     ws.registry.SessionID(),
		GlobalVisible: ws.registry.GlobalVisible(),
		Trails:        []trailView{},
	}
	for _, snap := range ws.registry.Snapshots() {
		if only != "" && snap.Subject != only {
			continue
		}
		resp.Trails = append(resp.Trails, newTrailView(snap, active[snap.Subject]))
	}
	if only != "" && len(resp.Trails) == 0 {
		httputil.NotFound(w, fmt.Sprintf("no trail for %q", only))
		return
	}
	httputil.WriteJSONOK(w, resp)
}

// handleTrack starts or resumes tracking a subject.
func (ws *WebServer) handleTrack(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeSubject(w, r)
	if !ok {
		return
	}
	if ws.tracker == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "tracking is not available")
		return
	}

	if _, err := ws.tracker.Start(ws.context(), req.Subject, req.Color, nil); err != nil {
		if errors.Is(err, sampler.ErrNoPositionSource) {
			httputil.WriteJSONError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		httputil.InternalServerError(w, err.Error())
		return
	}
	if req.Label != "" {
		ws.registry.SetLabel(req.Subject, req.Label)
	}

	snap, _ := ws.registry.Snapshot(req.Subject)
	httputil.WriteJSONOK(w, newTrailView(snap, true))
}

// handleStop stops sampling a subject but keeps its trail.
func (ws *WebServer) handleStop(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeSubject(w, r)
	if !ok {
		return
	}
	if ws.tracker == nil || !ws.tracker.Stop(req.Subject) {
		httputil.NotFound(w, fmt.Sprintf("%q is not being tracked", req.Subject))
		return
	}
	ws.publish(fmt.Sprintf("Stopped tracking %s", req.Subject))
	httputil.WriteJSONOK(w, map[string]string{"stopped": req.Subject})
}

// handleClear empties a subject's trail.
func (ws *WebServer) handleClear(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeSubject(w, r)
	if !ok {
		return
	}
	if !ws.registry.ClearTrail(req.Subject) {
		httputil.NotFound(w, fmt.Sprintf("no trail for %q", req.Subject))
		return
	}
	ws.publish("Trail cleared")
	httputil.WriteJSONOK(w, map[string]string{"cleared": req.Subject})
}

// handleRemove stops sampling and deletes a subject's trail.
func (ws *WebServer) handleRemove(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeSubject(w, r)
	if !ok {
		return
	}
	if ws.tracker != nil {
		ws.tracker.Stop(req.Subject)
	}
	if !ws.registry.RemoveTrail(req.Subject) {
		httputil.NotFound(w, fmt.Sprintf("no trail for %q", req.Subject))
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"removed": req.Subject})
}

// handleVisible shows or hides one trail.
func (ws *WebServer) handleVisible(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeSubject(w, r)
	if !ok {
		return
	}
	if req.Visible == nil {
		httputil.BadRequest(w, "missing visible")
		return
	}
	if !ws.registry.SetVisible(req.Subject, *req.Visible) {
		httputil.NotFound(w, fmt.Sprintf("no trail for %q", req.Subject))
		return
	}
	httputil.WriteJSONOK(w, map[string]any{"subject": req.Subject, "visible": *req.Visible})
}

// handleGlobalVisible shows or hides every trail at once.
func (ws *WebServer) handleGlobalVisible(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Visible *bool `json:"visible"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if req.Visible == nil {
		httputil.BadRequest(w, "missing visible")
		return
	}
	ws.registry.SetGlobalVisible(*req.Visible)
	if *req.Visible {
		ws.publish("Trails shown")
	} else {
		ws.publish("Trails hidden")
	}
	httputil.WriteJSONOK(w, map[string]bool{"visible": *req.Visible})
}

// handleReset stops all sampling and drops every trail, ready for a new
// replay session.
func (ws *WebServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodPost) {
		return
	}
	if ws.tracker != nil {
		ws.tracker.StopAll()
	}
	ws.registry.ClearAll()
	if ws.status != nil {
		ws.status.Reset()
	}
	ws.publish("All trails removed")
	httputil.WriteJSONOK(w, map[string]string{"session_id": ws.registry.SessionID()})
}

// handleStatus returns the last status line shown to the user.
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodGet) {
		return
	}
	if ws.status == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no status channel")
		return
	}
	httputil.WriteJSONOK(w, ws.status.Last())
}

package monitor

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/banshee-data/movement.trails/internal/httputil"
	"github.com/banshee-data/movement.trails/internal/report"
)

type playersResponse struct {
	Report  report.Info     `json:"report"`
	Players []report.Player `json:"players"`
	Fights  []report.Fight  `json:"fights,omitempty"`
}

// handleReportPlayers lists the players of a fight so the host can offer
// them for tracking.
//
// GET ?url=<viewer url> fetches the report from the viewer.
// POST with the page's report JSON as body and ?fight=N parses it locally;
// without a fight the report's fights are listed instead.
func (ws *WebServer) handleReportPlayers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ws.handleReportPlayersByURL(w, r)
	case http.MethodPost:
		ws.handleReportPlayersFromBody(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (ws *WebServer) handleReportPlayersByURL(w http.ResponseWriter, r *http.Request) {
	if ws.reports == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "report lookup is not available")
		return
	}
	viewerURL := r.URL.Query().Get("url")
	if viewerURL == "" {
		httputil.BadRequest(w, "missing url")
		return
	}
	info, players, err := ws.reports.PlayersForURL(r.Context(), viewerURL)
	if err != nil {
		if errors.Is(err, report.ErrNoReportData) {
			httputil.NotFound(w, err.Error())
			return
		}
		httputil.WriteJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	httputil.WriteJSONOK(w, playersResponse{Report: info, Players: nonNil(players)})
}

func (ws *WebServer) handleReportPlayersFromBody(w http.ResponseWriter, r *http.Request) {
	raw, err := httputil.ReadBody(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	fight := r.URL.Query().Get("fight")
	if fight == "" {
		fights, err := report.Fights(raw)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, playersResponse{Players: []report.Player{}, Fights: fights})
		return
	}

	id, err := strconv.Atoi(fight)
	if err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid fight %q", fight))
		return
	}
	players, err := report.PlayersInFight(raw, id)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, playersResponse{Report: report.Info{FightID: id}, Players: nonNil(players)})
}

func nonNil(p []report.Player) []report.Player {
	if p == nil {
		return []report.Player{}
	}
	return p
}

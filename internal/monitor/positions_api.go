package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/banshee-data/movement.trails/internal/httputil"
	"github.com/banshee-data/movement.trails/internal/position"
	"github.com/banshee-data/movement.trails/internal/timeutil"
	"github.com/banshee-data/movement.trails/internal/trails"
)

type positionAck struct {
	Subject string       `json:"subject"`
	Point   trails.Point `json:"point"`
}

// handlePositions lists the latest reported positions (GET) or accepts one
// or more position updates (POST, a single object or an array).
func (ws *WebServer) handlePositions(w http.ResponseWriter, r *http.Request) {
	if ws.feed == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no position feed")
		return
	}
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, ws.feed.Entries())
	case http.MethodPost:
		body, err := httputil.ReadBody(r)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		updates, err := decodeUpdates(body)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		acks := make([]positionAck, 0, len(updates))
		for _, u := range updates {
			p, err := ws.feed.Apply(u)
			if err != nil {
				httputil.BadRequest(w, err.Error())
				return
			}
			acks = append(acks, positionAck{Subject: u.Subject, Point: p})
		}
		httputil.WriteJSONOK(w, acks)
	default:
		httputil.MethodNotAllowed(w)
	}
}

// handlePositionSocket keeps a websocket open for the page to stream
// position updates at frame rate. Bad frames are answered with an error
// message and the connection stays open.
func (ws *WebServer) handlePositionSocket(w http.ResponseWriter, r *http.Request) {
	if ws.feed == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no position feed")
		return
	}
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		trails.Diagf("position socket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	trails.Opsf("position socket connected from %s", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				trails.Diagf("position socket closed: %v", err)
			}
			return
		}
		updates, err := decodeUpdates(data)
		if err != nil {
			if err := conn.WriteJSON(map[string]string{"error": err.Error()}); err != nil {
				return
			}
			continue
		}
		for _, u := range updates {
			if _, err := ws.feed.Apply(u); err != nil {
				if err := conn.WriteJSON(map[string]string{"error": err.Error(), "subject": u.Subject}); err != nil {
					return
				}
			}
		}
	}
}

// decodeUpdates accepts a single update object or an array of them.
func decodeUpdates(data []byte) ([]position.Update, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var updates []position.Update
		if err := json.Unmarshal(data, &updates); err != nil {
			return nil, fmt.Errorf("invalid position updates: %w", err)
		}
		return updates, nil
	}
	var u position.Update
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("invalid position update: %w", err)
	}
	return []position.Update{u}, nil
}

type replayTimeRequest struct {
	Ms   *int64 `json:"ms,omitempty"`
	Text string `json:"text,omitempty"`
}

type replayTimeResponse struct {
	Ms      int64  `json:"ms"`
	Known   bool   `json:"known"`
	Display string `json:"display"`
}

// handleReplayTime reports (GET) or sets (POST) the replay viewer's clock.
// The page may send either milliseconds or the viewer's timer text.
func (ws *WebServer) handleReplayTime(w http.ResponseWriter, r *http.Request) {
	if ws.replay == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no replay clock")
		return
	}
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req replayTimeRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		switch {
		case req.Ms != nil:
			ws.replay.Set(*req.Ms)
		case req.Text != "":
			secs, err := timeutil.ParseReplayTime(req.Text)
			if err != nil {
				httputil.BadRequest(w, err.Error())
				return
			}
			ws.replay.Set(int64(secs * 1000))
		default:
			httputil.BadRequest(w, "missing ms or text")
			return
		}
	default:
		httputil.MethodNotAllowed(w)
		return
	}
	ms := ws.replay.CurrentReplayTimeMs()
	httputil.WriteJSONOK(w, replayTimeResponse{
		Ms:      ms,
		Known:   ws.replay.Known(),
		Display: timeutil.FormatReplayTime(float64(ms) / 1000),
	})
}

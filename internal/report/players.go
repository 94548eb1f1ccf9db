package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNoReportData is returned when no report object with fights and
// friendlies can be found in the input.
var ErrNoReportData = errors.New("no report data found")

// containerKeys are the globals the viewer has been seen to keep its report
// object under, in lookup order.
var containerKeys = []string{"_reportData", "reportData", "wclData", "pageData"}

// Player is a friendly participant of a fight.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Server string `json:"server,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

// Fight is one encounter or trash pull in a report.
type Fight struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
}

func isReport(r gjson.Result) bool {
	return r.IsObject() && r.Get("fights").Exists() && r.Get("friendlies").Exists()
}

// Extract locates the report object in raw JSON: either raw itself or the
// first known container key holding one.
func Extract(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON", ErrNoReportData)
	}
	root := gjson.ParseBytes(raw)
	if isReport(root) {
		return root, nil
	}
	for _, key := range containerKeys {
		if r := root.Get(gjson.Escape(key)); isReport(r) {
			return r, nil
		}
	}
	return gjson.Result{}, ErrNoReportData
}

// Fights lists the fights of the report in raw.
func Fights(raw []byte) ([]Fight, error) {
	rep, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	var out []Fight
	rep.Get("fights").ForEach(func(_, f gjson.Result) bool {
		out = append(out, Fight{
			ID:        int(f.Get("id").Int()),
			Name:      f.Get("name").String(),
			StartTime: f.Get("start_time").Int(),
			EndTime:   f.Get("end_time").Int(),
		})
		return true
	})
	return out, nil
}

// PlayersInFight returns the friendlies that took part in fightID. A
// friendly's "fights" field is a dot-delimited id list such as ".1.4.7.".
// Friendlies without an id are given "player-<index>".
func PlayersInFight(raw []byte, fightID int) ([]Player, error) {
	rep, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	needle := "." + strconv.Itoa(fightID) + "."

	var out []Player
	for i, f := range rep.Get("friendlies").Array() {
		if !strings.Contains(f.Get("fights").String(), needle) {
			continue
		}
		id := f.Get("id").String()
		if id == "" {
			id = "player-" + strconv.Itoa(i)
		}
		out = append(out, Player{
			ID:     id,
			Name:   f.Get("name").String(),
			Type:   f.Get("type").String(),
			Server: f.Get("server").String(),
			Icon:   f.Get("icon").String(),
		})
	}
	return out, nil
}

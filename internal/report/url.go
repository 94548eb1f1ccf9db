// Package report reads report and fight metadata from replay viewer URLs
// and the report JSON embedded in the page.
package report

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Host is the replay viewer's site.
const Host = "www.warcraftlogs.com"

// Info identifies the report and fight shown by a viewer URL.
type Info struct {
	ReportCode string `json:"report_code"`
	FightID    int    `json:"fight_id,omitempty"`
}

var reportPathRe = regexp.MustCompile(`/reports/([A-Za-z0-9]+)`)

// ParseReportURL extracts the report code and, when present, the fight id
// from a viewer URL. The fight may be given as "?fight=N" or "#fight=N".
func ParseReportURL(raw string) (Info, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Info{}, fmt.Errorf("parse report url: %w", err)
	}
	m := reportPathRe.FindStringSubmatch(u.Path)
	if m == nil {
		return Info{}, fmt.Errorf("no report code in %q", raw)
	}
	info := Info{ReportCode: m[1]}

	fight := u.Query().Get("fight")
	if fight == "" {
		if frag, err := url.ParseQuery(u.Fragment); err == nil {
			fight = frag.Get("fight")
		}
	}
	switch fight {
	case "", "last":
	default:
		id, err := strconv.Atoi(fight)
		if err != nil {
			return Info{}, fmt.Errorf("invalid fight %q in %q", fight, raw)
		}
		info.FightID = id
	}
	return info, nil
}

// IsReplayURL reports whether raw points at the viewer's replay view.
func IsReplayURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Query().Get("view") == "replay" {
		return true
	}
	frag, err := url.ParseQuery(u.Fragment)
	return err == nil && frag.Get("view") == "replay"
}

// IsViewerURL reports whether raw is on the viewer's site at all.
func IsViewerURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.HasSuffix(u.Hostname(), "warcraftlogs.com")
}

// FightsAndParticipantsURL returns the endpoint that serves the report's
// fights and friendly participants.
func FightsAndParticipantsURL(code string) string {
	return fmt.Sprintf("https://%s/reports/fights-and-participants/%s/0", Host, url.PathEscape(code))
}

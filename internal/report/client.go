package report

import (
	"context"
	"fmt"

	"github.com/banshee-data/movement.trails/internal/httputil"
)

// Client fetches report metadata from the viewer.
type Client struct {
	http httputil.HTTPClient
}

// NewClient creates a Client using c for requests.
func NewClient(c httputil.HTTPClient) *Client {
	return &Client{http: c}
}

// FetchReport downloads the fights and participants document for code.
func (c *Client) FetchReport(ctx context.Context, code string) ([]byte, error) {
	raw, err := httputil.GetBytes(ctx, c.http, FightsAndParticipantsURL(code))
	if err != nil {
		return nil, fmt.Errorf("fetch report %s: %w", code, err)
	}
	return raw, nil
}

// PlayersForURL resolves the players of the fight shown by a viewer URL.
func (c *Client) PlayersForURL(ctx context.Context, viewerURL string) (Info, []Player, error) {
	info, err := ParseReportURL(viewerURL)
	if err != nil {
		return Info{}, nil, err
	}
	if info.FightID == 0 {
		return info, nil, fmt.Errorf("no fight selected in %q", viewerURL)
	}
	raw, err := c.FetchReport(ctx, info.ReportCode)
	if err != nil {
		return info, nil, err
	}
	players, err := PlayersInFight(raw, info.FightID)
	if err != nil {
		return info, nil, fmt.Errorf("report %s: %w", info.ReportCode, err)
	}
	return info, players, nil
}

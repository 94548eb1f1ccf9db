package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportURL(t *testing.T) {
	tests := []struct {
		url  string
		want Info
	}{
		{"https://www.warcraftlogs.com/reports/aB3dE9fGh1", Info{ReportCode: "aB3dE9fGh1"}},
		{"https://www.warcraftlogs.com/reports/aB3dE9fGh1?fight=12&type=damage-done", Info{ReportCode: "aB3dE9fGh1", FightID: 12}},
		{"https://www.warcraftlogs.com/reports/XyZ#fight=4&view=replay", Info{ReportCode: "XyZ", FightID: 4}},
		{"https://www.warcraftlogs.com/reports/XyZ?fight=last", Info{ReportCode: "XyZ"}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseReportURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{
		"https://www.warcraftlogs.com/character/eu/foo",
		"https://www.warcraftlogs.com/reports/XyZ?fight=abc",
		"://bad",
	} {
		_, err := ParseReportURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestReplayAndViewerURL(t *testing.T) {
	assert.True(t, IsReplayURL("https://www.warcraftlogs.com/reports/XyZ?fight=3&view=replay"))
	assert.True(t, IsReplayURL("https://www.warcraftlogs.com/reports/XyZ#fight=3&view=replay"))
	assert.False(t, IsReplayURL("https://www.warcraftlogs.com/reports/XyZ?fight=3"))
	assert.False(t, IsReplayURL("://bad"))

	assert.True(t, IsViewerURL("https://classic.warcraftlogs.com/reports/XyZ"))
	assert.False(t, IsViewerURL("https://example.com/reports/XyZ"))
}

func TestFightsAndParticipantsURL(t *testing.T) {
	assert.Equal(t,
		"https://www.warcraftlogs.com/reports/fights-and-participants/aB3dE9fGh1/0",
		FightsAndParticipantsURL("aB3dE9fGh1"))
}

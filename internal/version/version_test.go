package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	old := [3]string{Version, GitSHA, BuildTime}
	defer func() { Version, GitSHA, BuildTime = old[0], old[1], old[2] }()

	Version, GitSHA, BuildTime = "v0.3.1", "abc1234", "2026-01-02T03:04:05Z"
	assert.Equal(t, "v0.3.1 (abc1234, built 2026-01-02T03:04:05Z)", String())
}

package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoDefault(t *testing.T) {
	info := Info()
	assert.Contains(t, info, "tutor dev")
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestInfoLdflagsWin(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	})

	Version = "1.2.3"
	Commit = "abc1234567890"
	Date = "2026-01-15"

	info := Info()
	assert.Contains(t, info, "tutor 1.2.3")
	assert.Contains(t, info, "commit: abc1234,")
	assert.NotContains(t, info, "abc1234567890")
	assert.Contains(t, info, "built: 2026-01-15")
}

func TestFromBuildInfoKeepsExplicitDate(t *testing.T) {
	// test binaries carry no vcs stamp
	commit, date := fromBuildInfo("2026-02-01")
	assert.Equal(t, "unknown", commit)
	assert.Equal(t, "2026-02-01", date)
}

func TestShort(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abcdefghij", "abcdefg"},
		{"abc1234", "abc1234"},
		{"abc", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, short(tt.input))
		})
	}
}

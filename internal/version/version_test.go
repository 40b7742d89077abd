package version

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func withPlainOutput(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	ov, oc, od := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = ov, oc, od })
}

func TestStringDefault(t *testing.T) {
	withPlainOutput(t)
	withVersion(t, "0.1.0-dev", "", "")
	require.Equal(t, "kestrel 0.1.0-dev", String())
}

func TestStringWithBuildInfo(t *testing.T) {
	withPlainOutput(t)
	withVersion(t, "1.2.3", "abc123", "2026-01-15T10:30:00Z")
	require.Equal(t, "kestrel 1.2.3 (abc123) built 2026-01-15T10:30:00Z", String())
}

func TestColoredKeepsNonSemver(t *testing.T) {
	withVersion(t, "nightly", "", "")
	require.Equal(t, "nightly", Colored())
}

func TestColoredWrapsComponents(t *testing.T) {
	if os.Getenv("NO_COLOR") != "" {
		t.Skip("NO_COLOR is set")
	}
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })
	withVersion(t, "1.2.3", "", "")

	out := Colored()
	require.NotEqual(t, "1.2.3", out)
	require.Contains(t, out, "\x1b[")
}

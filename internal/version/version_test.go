package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetVersion(t *testing.T) {
	t.Helper()
	origVersion, origRevision, origBuildDate := Version, Revision, BuildDate
	t.Cleanup(func() {
		Version, Revision, BuildDate = origVersion, origRevision, origBuildDate
	})
}

func TestVersionStrings(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Revision)

	detailed := Detailed()
	assert.True(t, strings.HasPrefix(detailed, Version+" ("))
	assert.Contains(t, detailed, "/")
	assert.True(t, strings.HasPrefix(DetailedWithApp(), AppName+" "))
}

func TestDetailed_OmitsUnknownBuildDate(t *testing.T) {
	resetVersion(t)
	Version, Revision, BuildDate = "1.2.3", "abc123", ""

	assert.NotContains(t, Detailed(), "; )")
	assert.True(t, strings.HasSuffix(Detailed(), ")"))

	BuildDate = "2026-01-02T03:04:05Z"
	assert.True(t, strings.HasSuffix(Detailed(), "; 2026-01-02T03:04:05Z)"))
}

func TestApplyBuildInfo_PopulatesDefaults(t *testing.T) {
	resetVersion(t)
	Version, Revision, BuildDate = devVersion, "HEAD", ""

	applyBuildInfo("v9.9.9", map[string]string{
		"vcs.revision": "abcdef1234567890",
		"vcs.modified": "true",
		"vcs.time":     "2025-12-12T01:00:00Z",
	})

	assert.Equal(t, "9.9.9", Version)
	assert.Equal(t, "abcdef1234567890-dirty", Revision)
	assert.Equal(t, "2025-12-12T01:00:00Z", BuildDate)
}

func TestApplyBuildInfo_KeepsLdflagsValues(t *testing.T) {
	resetVersion(t)
	Version, Revision, BuildDate = "2.0.0", "release", "2024-01-01T00:00:00Z"

	applyBuildInfo("(devel)", map[string]string{
		"vcs.revision": "ffff",
		"vcs.time":     "2025-12-12T01:00:00Z",
	})

	assert.Equal(t, "2.0.0", Version)
	assert.Equal(t, "release", Revision)
	assert.Equal(t, "2024-01-01T00:00:00Z", BuildDate)
}

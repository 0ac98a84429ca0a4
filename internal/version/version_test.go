package version

import (
	"strings"
	"testing"
)

func TestInfo_IncludesBuildMetadata(t *testing.T) {
	orig := Version
	Version = "v1.2.3"
	t.Cleanup(func() { Version = orig })

	if got := Short(); got != "v1.2.3" {
		t.Errorf("Short() = %q", got)
	}
	if got := Info(); !strings.Contains(got, "v1.2.3") || !strings.Contains(got, GitCommit) {
		t.Errorf("Info() = %q, missing version or commit", got)
	}
	m := Map()
	for _, k := range []string{"version", "git_commit", "build_date", "go_version"} {
		if m[k] == "" {
			t.Errorf("Map()[%q] is empty", k)
		}
	}
}

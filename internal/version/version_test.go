package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	origVersion, origCommit := Version, Commit
	defer func() { Version, Commit = origVersion, origCommit }()

	Version = "2.1.0"

	Commit = "0123456789abcdef"
	if got := Info(); got != "2.1.0 (0123456)" {
		t.Errorf("Info() = %q, want %q", got, "2.1.0 (0123456)")
	}

	Commit = "1234567"
	if got := Info(); got != "2.1.0 (1234567)" {
		t.Errorf("Info() = %q", got)
	}
}

func TestFull(t *testing.T) {
	origCommit, origDate := Commit, BuildDate
	defer func() { Commit, BuildDate = origCommit, origDate }()

	Commit, BuildDate = "deadbeefcafe", "2024-05-01"
	got := Full()
	for _, part := range []string{"mdbgw " + Version, "commit deadbeefcafe", "built  2024-05-01"} {
		if !strings.Contains(got, part) {
			t.Errorf("Full() = %q, want to contain %q", got, part)
		}
	}
	if strings.Count(got, "\n") != 2 {
		t.Errorf("Full() = %q, want three lines", got)
	}
}

package version

import (
	"strings"
	"testing"
)

func TestCurrent_Defaults(t *testing.T) {
	info := Current("screenbase")
	if info.Service != "screenbase" {
		t.Fatalf("service = %q, want screenbase", info.Service)
	}
	if info.Version != DevelopmentVersion {
		t.Fatalf("version = %q, want %q", info.Version, DevelopmentVersion)
	}
	if info.Commit != Unknown {
		t.Fatalf("commit = %q, want %q", info.Commit, Unknown)
	}
}

func TestCurrent_EmptyServiceFallsBack(t *testing.T) {
	info := Current("  ")
	if info.Service != Unknown {
		t.Fatalf("service = %q, want %q", info.Service, Unknown)
	}
}

func TestParseBuildTime(t *testing.T) {
	if _, ok := (Info{BuildTime: Unknown}).ParseBuildTime(); ok {
		t.Fatal("expected no build time for unknown")
	}
	if _, ok := (Info{BuildTime: "not-a-time"}).ParseBuildTime(); ok {
		t.Fatal("expected no build time for malformed value")
	}
	ts, ok := (Info{BuildTime: "2026-01-02T15:04:05Z"}).ParseBuildTime()
	if !ok || ts.IsZero() {
		t.Fatalf("expected parsed build time, got %v ok=%v", ts, ok)
	}
}

func TestString(t *testing.T) {
	s := Current("screenbase").String()
	if !strings.Contains(s, "screenbase@") {
		t.Fatalf("unexpected string form: %q", s)
	}
}

package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jedib0t/go-pretty/v6/text"

	"mashup/internal/deps"
	"mashup/internal/runs"
)

func TestFormatCheckPlain(t *testing.T) {
	got := formatCheck("FFmpeg", stateFail, "not found", false)
	want := fmt.Sprintf("  %-*s fail  not found", statusLabelWidth, "FFmpeg")
	if got != want {
		t.Fatalf("formatCheck mismatch\n got: %q\nwant: %q", got, want)
	}
	if got := formatCheck("Recorded", stateInfo, "", false); strings.HasSuffix(got, " ") {
		t.Fatalf("empty detail should not leave trailing space: %q", got)
	}
}

func TestFormatCheckColoursOnlyTheTag(t *testing.T) {
	got := formatCheck("FFmpeg", stateOK, "ffmpeg version 7.1", true)
	tag := text.Colors{text.FgGreen}.Sprint("ok  ")
	want := fmt.Sprintf("  %-*s %s  ffmpeg version 7.1", statusLabelWidth, "FFmpeg", tag)
	if got != want {
		t.Fatalf("formatCheck mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestStatusReportSections(t *testing.T) {
	report := &statusReport{}
	report.section("Tools")
	report.add("FFmpeg", stateOK, "")
	report.section("Run history")
	lines := strings.Split(report.String(), "\n")
	want := []string{"Tools", "-----", formatCheck("FFmpeg", stateOK, "", false), "", "Run history", "-----------"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestAddDependencies(t *testing.T) {
	statuses := []deps.Status{
		{Name: "FFmpeg", Available: true, Version: "ffmpeg version 7.1"},
		{Name: "FFprobe", Detail: `binary "ffprobe" not found`},
		{Name: "yt-dlp", Optional: true, Detail: `binary "yt-dlp" not found`},
	}
	report := &statusReport{}
	addDependencies(report, statuses)
	if len(report.lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(report.lines))
	}
	if !strings.Contains(report.lines[0], "fail") || !strings.Contains(report.lines[0], "1 of 3") {
		t.Fatalf("unexpected summary %q", report.lines[0])
	}
	if !strings.Contains(report.lines[3], "warn") || !strings.Contains(report.lines[3], "singer searches are unavailable") {
		t.Fatalf("optional dependency should warn: %q", report.lines[3])
	}
}

func TestRenderRunsTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	list := []runs.Run{
		{ID: "0123456789abcdef", Origin: "cli", Mode: "search", Performer: "Test Singer", Count: 12,
			Status: runs.StatusSucceeded, Clips: 11, Skipped: 1, Duration: 251 * time.Second, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "short", Origin: "web", Mode: "upload", Status: runs.StatusFailed, ErrorKind: "no_audio", CreatedAt: now.Add(-time.Minute)},
	}
	out := renderRunsTable(list, now)
	for _, want := range []string{"01234567", "2 hours ago", "Test Singer ×12", "11 (1 skipped)", "4:11", "uploads", "failed (no_audio)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

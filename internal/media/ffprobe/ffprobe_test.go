package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio", CodecName: "opus", SampleRate: "48000", Channels: 2},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
		},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	primary, ok := result.PrimaryAudio()
	if !ok || primary.CodecName != "opus" || primary.SampleRateHz() != 48000 {
		t.Fatalf("unexpected primary audio stream: %+v ok=%v", primary, ok)
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video"}},
		Format: Format{
			Duration: "bad",
			Size:     "-1",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if _, ok := result.PrimaryAudio(); ok {
		t.Fatal("expected no audio stream")
	}
}

func TestAudioSeconds(t *testing.T) {
	cases := []struct {
		name     string
		result   Result
		seconds  float64
		reported bool
	}{
		{"stream duration wins", Result{Streams: []Stream{{CodecType: "audio", Duration: "12.5"}}, Format: Format{Duration: "30"}}, 12.5, true},
		{"container fallback", Result{Streams: []Stream{{CodecType: "audio"}}, Format: Format{Duration: "30"}}, 30, true},
		{"zero is reported", Result{Streams: []Stream{{CodecType: "audio", Duration: "0.000000"}}}, 0, true},
		{"unparseable stream falls back", Result{Streams: []Stream{{CodecType: "audio", Duration: "N/A"}}, Format: Format{Duration: "8"}}, 8, true},
		{"nothing reported", Result{Streams: []Stream{{CodecType: "audio"}}}, 0, false},
		{"garbage container", Result{Format: Format{Duration: "bad"}}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seconds, reported := tc.result.AudioSeconds()
			if seconds != tc.seconds || reported != tc.reported {
				t.Fatalf("AudioSeconds() = %v, %v; want %v, %v", seconds, reported, tc.seconds, tc.reported)
			}
		})
	}
}

func TestInspectParsesStubOutput(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\ncat <<'JSON'\n{\"streams\":[{\"index\":0,\"codec_type\":\"audio\",\"codec_name\":\"mp3\",\"sample_rate\":\"44100\",\"channels\":2}],\"format\":{\"duration\":\"30.5\"}}\nJSON\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := Inspect(context.Background(), stub, filepath.Join(dir, "clip.mp3"))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.AudioStreamCount() != 1 || result.DurationSeconds() != 30.5 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestInspectReportsFailure(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho 'Invalid data found' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Inspect(context.Background(), stub, "x.mp3"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
	if _, err := Inspect(context.Background(), stub, " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"song.mp3", "song.mp3"},
		{"  C:\\Users\\me\\My Song.mp3 ", "My Song.mp3"},
		{"../../etc/passwd", "passwd"},
		{".hidden.mp3", "hidden.mp3"},
		{"what?.mp3", "what.mp3"},
		{"tab\there.wav", "tabhere.wav"},
		{"", ""},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueFileName(t *testing.T) {
	existing := map[string]bool{"a.mp3": true, "a-1.mp3": true}
	taken := func(name string) bool { return existing[name] }

	if got := UniqueFileName("b.mp3", taken); got != "b.mp3" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := UniqueFileName("a.mp3", taken); got != "a-2.mp3" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestClipTitle(t *testing.T) {
	if got := ClipTitle("/tmp/x/tum_hi_ho-live.webm"); got != "Tum Hi Ho Live" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := ClipTitle("/tmp/___.mp3"); got != "Untitled" {
		t.Fatalf("unexpected title %q", got)
	}
}

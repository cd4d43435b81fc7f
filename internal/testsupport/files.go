package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ClipContent is the file body FakeCodec decodes as a clip of the given
// length.
func ClipContent(seconds int) string {
	return "seconds=" + strconv.Itoa(seconds)
}

// WriteClip writes a fake media file understood by FakeCodec. seconds < 0
// writes an empty, undecodable file.
func WriteClip(t testing.TB, path string, seconds int) {
	t.Helper()
	if seconds < 0 {
		WriteFile(t, path, "")
		return
	}
	WriteFile(t, path, ClipContent(seconds))
}

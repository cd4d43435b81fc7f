package staging

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mashup/internal/logging"
	"mashup/internal/request"
	"mashup/internal/services"
)

func readerUpload(name, body string) request.Upload {
	return request.Upload{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func TestStageUploadsSanitizesAndDeduplicates(t *testing.T) {
	dir := t.TempDir()
	uploads := []request.Upload{
		readerUpload("../song.mp3", "one"),
		readerUpload("song.mp3", "two"),
		readerUpload("???", "three"),
	}

	staged, err := StageUploads(context.Background(), dir, uploads, logging.NewNop())
	if err != nil {
		t.Fatalf("StageUploads: %v", err)
	}
	want := []string{
		filepath.Join(dir, "song.mp3"),
		filepath.Join(dir, "song-1.mp3"),
		filepath.Join(dir, "upload-003"),
	}
	if len(staged) != len(want) {
		t.Fatalf("staged %v, want %v", staged, want)
	}
	for i := range want {
		if staged[i] != want[i] {
			t.Fatalf("staged[%d] = %s, want %s", i, staged[i], want[i])
		}
	}
	got, err := os.ReadFile(want[1])
	if err != nil || string(got) != "two" {
		t.Fatalf("unexpected content %q err=%v", got, err)
	}
}

func TestStageUploadsCopiesLocalFiles(t *testing.T) {
	src := filepath.Join(t.TempDir(), "local.wav")
	if err := os.WriteFile(src, []byte("pcm"), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	staged, err := StageUploads(context.Background(), dir, []request.Upload{{Path: src}}, nil)
	if err != nil {
		t.Fatalf("StageUploads: %v", err)
	}
	if len(staged) != 1 || filepath.Base(staged[0]) != "local.wav" {
		t.Fatalf("unexpected staged files %v", staged)
	}
}

func TestCheckSourcesRejectsMissingFile(t *testing.T) {
	err := CheckSources([]request.Upload{{Path: filepath.Join(t.TempDir(), "missing.mp3")}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.HasPrefix(services.UserMessage(err), "Audio file not found:") {
		t.Fatalf("unexpected message %q", services.UserMessage(err))
	}
}

func TestStageUploadsReportsOpenFailure(t *testing.T) {
	upload := request.Upload{
		Name: "broken.mp3",
		Open: func() (io.ReadCloser, error) { return nil, errors.New("multipart gone") },
	}
	_, err := StageUploads(context.Background(), t.TempDir(), []request.Upload{upload}, nil)
	if !errors.Is(err, services.ErrAcquisition) {
		t.Fatalf("expected acquisition error, got %v", err)
	}
}

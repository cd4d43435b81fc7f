package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"mashup/internal/fileutil"
	"mashup/internal/logging"
	"mashup/internal/request"
	"mashup/internal/services"
	"mashup/internal/textutil"
)

// StageUploads writes caller supplied files into dir and returns the staged
// paths in the order given. Names are sanitized and de-duplicated so two
// uploads with the same name both survive.
func StageUploads(ctx context.Context, dir string, uploads []request.Upload, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	taken := func(name string) bool {
		_, err := os.Lstat(filepath.Join(dir, name))
		return err == nil
	}

	staged := make([]string, 0, len(uploads))
	for idx, upload := range uploads {
		if err := ctx.Err(); err != nil {
			return staged, err
		}
		name := upload.Name
		if name == "" {
			name = filepath.Base(upload.Path)
		}
		name = textutil.SanitizeFileName(name)
		if name == "" {
			name = fmt.Sprintf("upload-%03d", idx+1)
		}
		target := filepath.Join(dir, textutil.UniqueFileName(name, taken))

		size, err := stageOne(upload, target)
		if err != nil {
			return staged, err
		}
		logger.Debug("staged input file",
			logging.String(logging.FieldFile, filepath.Base(target)),
			logging.Int64("bytes", size),
			logging.String(logging.FieldEventType, "input_staged"),
		)
		staged = append(staged, target)
	}
	return staged, nil
}

func stageOne(upload request.Upload, target string) (int64, error) {
	if upload.Open != nil {
		rc, err := upload.Open()
		if err != nil {
			return 0, services.Wrap(services.ErrAcquisition, "stage", "open upload", upload.Name, err)
		}
		defer rc.Close()
		n, err := fileutil.WriteReader(rc, target, 0o644)
		if err != nil {
			return n, services.Wrap(services.ErrAcquisition, "stage", "save upload", upload.Name, err)
		}
		return n, nil
	}

	info, err := checkSource(upload.Path)
	if err != nil {
		return 0, err
	}
	if err := fileutil.CopyFile(upload.Path, target); err != nil {
		return 0, services.Wrap(services.ErrAcquisition, "stage", "copy", upload.Path, err)
	}
	return info.Size(), nil
}

// CheckSources verifies that every path-backed upload names a readable
// regular file. It is run before the workspace is cleared so a typo on the
// command line leaves no trace on disk.
func CheckSources(uploads []request.Upload) error {
	for _, upload := range uploads {
		if upload.Open != nil {
			continue
		}
		if _, err := checkSource(upload.Path); err != nil {
			return err
		}
	}
	return nil
}

func checkSource(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Fail(services.ErrValidation, fmt.Sprintf("Audio file not found: %s", path), err)
		}
		return nil, services.Wrap(services.ErrAcquisition, "stage", "stat", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, services.Fail(services.ErrValidation, fmt.Sprintf("Not a regular file: %s", path), nil)
	}
	return info, nil
}

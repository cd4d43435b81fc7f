package packaging

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mashup/internal/fileutil"
)

// DefaultEntryName is the name the MP3 is stored under inside the archive.
const DefaultEntryName = "mashup.mp3"

// Zip writes an archive at dst holding exactly one entry, src stored as
// entryName. The archive is built beside dst and renamed into place.
func Zip(src, dst, entryName string) (int64, error) {
	entryName = strings.TrimSpace(entryName)
	if entryName == "" {
		entryName = DefaultEntryName
	}
	if strings.ContainsAny(entryName, `/\`) {
		return 0, fmt.Errorf("zip entry name %q must not contain path separators", entryName)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("create archive directory: %w", err)
	}
	tmp, err := fileutil.TempFileFor(dst)
	if err != nil {
		return 0, fmt.Errorf("create temp archive: %w", err)
	}
	defer os.Remove(tmp)

	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	if err := writeEntry(out, in, info, entryName); err != nil {
		_ = out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	if err := fileutil.ReplaceFile(tmp, dst); err != nil {
		return 0, fmt.Errorf("move archive: %w", err)
	}
	stat, err := os.Stat(dst)
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

func writeEntry(w io.Writer, src io.Reader, info os.FileInfo, name string) error {
	zw := zip.NewWriter(w)
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("write zip entry: %w", err)
	}
	return zw.Close()
}

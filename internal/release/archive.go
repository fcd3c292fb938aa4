// Package release writes the persisted outputs of a deploy run: artifact
// archives, the summary table, release notes and the manifest.
package release

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteArchive zips files into outDir/name. Entries are stored under their
// base names. A missing artifact fails the archive and no partial zip is
// left behind.
func WriteArchive(outDir, name string, files []string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("archive %s: %w", name, err)
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return "", fmt.Errorf("archive %s: missing artifact %s", name, f)
		}
	}
	path := filepath.Join(outDir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", name, err)
	}
	if err := writeZip(out, files); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("archive %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("archive %s: %w", name, err)
	}
	return path, nil
}

func writeZip(w io.Writer, files []string) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		if err := addFile(zw, f); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(st)
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(path)
	hdr.Method = zip.Deflate
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()
	_, err = io.Copy(dst, src)
	return err
}

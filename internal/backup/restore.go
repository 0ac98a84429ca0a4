package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Restore errors.
var (
	ErrNoDatabase    = errors.New("archive does not contain " + DatabaseName)
	ErrPathTraversal = errors.New("path traversal detected")
	ErrExists        = errors.New("file already exists (use --force to overwrite)")
)

// maxEntrySize bounds a single extracted file.
const maxEntrySize = 10 << 30

// Restore extracts archivePath into targetDir and returns its manifest,
// which is nil for archives written without one. Existing files are kept
// unless force is set.
func Restore(ctx context.Context, archivePath, targetDir string, force bool) (*Manifest, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompress archive: %w", err)
	}
	defer gr.Close()

	if err := os.MkdirAll(targetDir, 0o750); err != nil {
		return nil, fmt.Errorf("create target directory: %w", err)
	}

	var (
		manifest *Manifest
		foundDB  bool
	)
	tr := tar.NewReader(gr)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read archive entry: %w", err)
		}

		dest, err := entryPath(hdr.Name, targetDir)
		if err != nil {
			return nil, err
		}

		if hdr.Name == ManifestName {
			var m Manifest
			if err := json.NewDecoder(io.LimitReader(tr, 1<<20)).Decode(&m); err != nil {
				return nil, fmt.Errorf("decode manifest: %w", err)
			}
			manifest = &m
			continue
		}
		if hdr.Name == DatabaseName {
			foundDB = true
		}

		if !force {
			if _, err := os.Stat(dest); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrExists, dest)
			}
		}
		if err := extract(tr, dest, hdr); err != nil {
			return nil, fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
	}

	if !foundDB {
		return nil, ErrNoDatabase
	}
	return manifest, nil
}

// entryPath resolves name under targetDir, rejecting absolute paths and
// anything that escapes it.
func entryPath(name, targetDir string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: absolute path %q", ErrPathTraversal, name)
	}
	cleaned := filepath.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}

	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return "", fmt.Errorf("resolve target directory: %w", err)
	}
	dest := filepath.Join(absTarget, cleaned)
	if dest != absTarget && !strings.HasPrefix(dest, absTarget+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves outside target", ErrPathTraversal, name)
	}
	return dest, nil
}

func extract(tr *tar.Reader, dest string, hdr *tar.Header) error {
	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(dest, 0o750)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
			return err
		}
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, io.LimitReader(tr, maxEntrySize)); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	default:
		// Symlinks and devices are skipped.
		return nil
	}
}

// Package backup archives the site database (content, submissions, users,
// theme and site settings) and optional config file into a .tar.gz, and
// restores such archives.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Archive entry names.
const (
	ManifestName = "manifest.json"
	DatabaseName = "theboolean.db"
)

// Manifest describes an archive. It is the first entry.
type Manifest struct {
	AppVersion string    `json:"appVersion"`
	CreatedAt  time.Time `json:"createdAt"`
	Files      []string  `json:"files"`
}

// Backup snapshots the database at dbPath with VACUUM INTO, so a running
// server keeps serving, and writes it with configPath (optional) to
// archivePath.
func Backup(ctx context.Context, dbPath, configPath, archivePath, appVersion string) (*Manifest, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database file not found: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "theboolean-backup-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, DatabaseName)
	if err := vacuumInto(ctx, dbPath, snapshot); err != nil {
		return nil, err
	}

	m := &Manifest{
		AppVersion: appVersion,
		CreatedAt:  time.Now().UTC(),
		Files:      []string{DatabaseName},
	}
	if configPath != "" {
		m.Files = append(m.Files, filepath.Base(configPath))
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o750); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	f, err := os.Create(archivePath)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	if err := writeArchive(f, m, snapshot, configPath); err != nil {
		f.Close()
		os.Remove(archivePath)
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return m, nil
}

func vacuumInto(ctx context.Context, dbPath, dest string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("snapshot database: %w", err)
	}
	return nil
}

func writeArchive(w io.Writer, m *Manifest, snapshot, configPath string) (err error) {
	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)
	defer func() {
		err = errors.Join(err, tw.Close(), gw.Close())
	}()

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := tw.WriteHeader(&tar.Header{
		Name:    ManifestName,
		Mode:    0o644,
		Size:    int64(len(raw)),
		ModTime: m.CreatedAt,
	}); err != nil {
		return err
	}
	if _, err := tw.Write(raw); err != nil {
		return err
	}

	if err := addFile(tw, snapshot, DatabaseName); err != nil {
		return err
	}
	if configPath != "" {
		if err := addFile(tw, configPath, filepath.Base(configPath)); err != nil {
			return err
		}
	}
	return nil
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

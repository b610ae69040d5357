// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package snapshot

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/http2"
)

const databaseExtension = ".mdb"

type ErrArchiveContents struct {
	Version string
	Files   []string
}

func (e ErrArchiveContents) Error() string {
	return fmt.Sprintf("archive of version %s must contain exactly one file, got %q", e.Version, e.Files)
}

// Syncer keeps a local directory of schedule databases in sync with the listed snapshots.
type Syncer struct {
	dir    string
	client *http.Client
	logger *slog.Logger
}

func NewSyncer(dir string, client *http.Client, logger *slog.Logger) *Syncer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Syncer{
		dir:    dir,
		client: client,
		logger: logger.With("component", "snapshot_syncer"),
	}
}

// Sync removes databases of versions which are not in snapshots, downloads all missing
// or outdated databases and sets the Path of every snapshot. Returns true if any local
// file was changed.
func (s *Syncer) Sync(ctx context.Context, snapshots []Snapshot) (changed bool, err error) {
	if err = os.MkdirAll(s.dir, 0o755); err != nil {
		return
	}

	wanted := make(map[string]bool, len(snapshots))
	for i := range snapshots {
		snapshots[i].Path = filepath.Join(s.dir, snapshots[i].Version+databaseExtension)
		wanted[snapshots[i].Version] = true
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if wanted[strings.TrimSuffix(entry.Name(), databaseExtension)] {
			continue
		}

		s.logger.Info("Removing outdated database", "file", entry.Name())
		if err = os.RemoveAll(filepath.Join(s.dir, entry.Name())); err != nil {
			return
		}
		changed = true
	}

	for i := range snapshots {
		var downloaded bool
		downloaded, err = s.download(ctx, &snapshots[i])
		if err != nil {
			return
		}
		changed = changed || downloaded
	}

	return
}

func (s *Syncer) download(ctx context.Context, snapshot *Snapshot) (bool, error) {
	var localModTime time.Time
	if stat, err := os.Stat(snapshot.Path); err == nil {
		localModTime = stat.ModTime()
	}

	resp, err := http2.Get(ctx, s.client, snapshot.URL)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	// Archives without Last-Modified are always treated as new
	remoteModTime, err := http.ParseTime(resp.Header.Get("Last-Modified"))
	if err == nil && !remoteModTime.After(localModTime) {
		s.logger.Debug("Database is up-to-date", "version", snapshot.Version)
		return false, nil
	}

	s.logger.Info("Downloading database", "version", snapshot.Version, "url", snapshot.URL)
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%s: %w", snapshot.URL, err)
	}

	if err = extractSingleFile(data, snapshot.Version, snapshot.Path); err != nil {
		return false, err
	}

	if !remoteModTime.IsZero() {
		if err = os.Chtimes(snapshot.Path, remoteModTime, remoteModTime); err != nil {
			return false, err
		}
	}
	return true, nil
}

func extractSingleFile(data []byte, version, target string) error {
	arch, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("archive of version %s: %w", version, err)
	}

	if len(arch.File) != 1 {
		names := make([]string, len(arch.File))
		for i, f := range arch.File {
			names[i] = f.Name
		}
		return ErrArchiveContents{version, names}
	}

	src, err := arch.File[0].Open()
	if err != nil {
		return err
	}
	defer src.Close()

	tempPath := getTempOutputPath(target)
	dst, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return err
	}

	return os.Rename(tempPath, target)
}

func getTempOutputPath(path string) string {
	dir, name := filepath.Split(path)
	return fmt.Sprintf("%s.%s.tmp", dir, name)
}

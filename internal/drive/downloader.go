package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/replenish-planner/internal/repository"
	"github.com/rs/zerolog/log"
)

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader pulls snapshot files out of a Drive folder.
type Downloader struct {
	service *Service
}

func NewDownloader(s *Service) *Downloader {
	return &Downloader{service: s}
}

// DownloadSnapshots saves every .csv, .xlsx and Google Sheet in the folder into
// DownloadDir and returns the local paths. Sheets are exported as CSV.
// Other files are skipped.
func (d *Downloader) DownloadSnapshots(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.service.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			name  = filepath.Base(f.Name)
			fetch func(context.Context, string, io.Writer) error
		)
		switch {
		case f.IsSheet():
			name = strings.TrimSuffix(name, filepath.Ext(name)) + ".csv"
			fetch = d.service.ExportCSV
		case repository.IsSnapshotFile(name):
			fetch = d.service.DownloadFile
		default:
			log.Debug().Str("file", f.Name).Str("mime", f.MimeType).Msg("drive: skipping non-snapshot file")
			continue
		}

		localPath := filepath.Join(opts.DownloadDir, name)
		if err := saveTo(ctx, localPath, f.ID, fetch); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		localPaths = append(localPaths, localPath)
	}

	log.Info().Str("folder", opts.FolderID).Int("files", len(localPaths)).Msg("drive: snapshots downloaded")
	return localPaths, nil
}

func saveTo(ctx context.Context, path, fileID string, fetch func(context.Context, string, io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", path, err)
	}
	if err := fetch(ctx, fileID, out); err != nil {
		out.Close()
		_ = os.Remove(path)
		return err
	}
	return out.Close()
}

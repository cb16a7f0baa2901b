package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/replenish-planner/internal/domain"
)

// FileSnapshotRepository reads snapshots from local .csv and .xlsx files.
type FileSnapshotRepository struct {
	paths []string
}

func NewFileSnapshotRepository(paths ...string) *FileSnapshotRepository {
	return &FileSnapshotRepository{paths: paths}
}

var _ SnapshotRepository = (*FileSnapshotRepository)(nil)

func (r *FileSnapshotRepository) ListSnapshots(ctx context.Context, filter domain.SKUFilter) ([]domain.SKUSnapshot, error) {
	var all []domain.SKUSnapshot
	for _, path := range r.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := readSnapshotFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return applyFilter(all, filter), nil
}

// IsSnapshotFile reports whether name has an extension the repository can read.
func IsSnapshotFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}

func readSnapshotFile(path string) ([]domain.SKUSnapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var parse func(io.Reader) ([]domain.SKUSnapshot, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		parse = ParseSnapshotsXLSX
	default:
		parse = ParseSnapshotsCSV
	}

	rows, err := parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

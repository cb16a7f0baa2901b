package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ReportUploader publishes rendered plan reports under a key prefix.
type ReportUploader struct {
	store  ObjectStorage
	prefix string
	now    func() time.Time
}

func NewReportUploader(store ObjectStorage, prefix string) *ReportUploader {
	return &ReportUploader{store: store, prefix: strings.Trim(prefix, "/"), now: time.Now}
}

// ReportKey is <prefix>/<as-of date>/plan-<generated at>.csv.
func (u *ReportUploader) ReportKey(asOf time.Time) string {
	name := fmt.Sprintf("plan-%s.csv", u.now().UTC().Format("20060102T150405Z"))
	return path.Join(u.prefix, asOf.Format("2006-01-02"), name)
}

// Upload stores data and returns the object key it was written to.
func (u *ReportUploader) Upload(ctx context.Context, asOf time.Time, data []byte) (string, error) {
	key := u.ReportKey(asOf)
	if err := u.store.UploadObject(ctx, key, data); err != nil {
		return "", err
	}
	log.Info().Str("key", key).Int("bytes", len(data)).Msg("plan report uploaded")
	return key, nil
}

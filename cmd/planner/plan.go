package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andresuchdata/replenish-planner/internal/cache"
	"github.com/andresuchdata/replenish-planner/internal/config"
	"github.com/andresuchdata/replenish-planner/internal/domain"
	"github.com/andresuchdata/replenish-planner/internal/drive"
	"github.com/andresuchdata/replenish-planner/internal/report"
	"github.com/andresuchdata/replenish-planner/internal/repository"
	"github.com/andresuchdata/replenish-planner/internal/repository/postgres"
	"github.com/andresuchdata/replenish-planner/internal/service"
	"github.com/andresuchdata/replenish-planner/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: required,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Evaluate many SKUs and write a plan report",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "input", Aliases: []string{"i"}, Usage: "Snapshot file (.csv or .xlsx); repeatable"},
			newDBURLFlag(false),
			&cli.StringFlag{Name: "drive-folder-id", Usage: "Google Drive folder holding snapshot files", EnvVars: []string{"DRIVE_FOLDER_ID"}},
			&cli.StringFlag{Name: "bucket-prefix", Usage: "Object storage prefix holding snapshot files"},
			&cli.StringSliceFlag{Name: "sku", Usage: "Only plan these SKUs"},
			&cli.StringSliceFlag{Name: "brand", Usage: "Only plan these brands"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum SKUs to load"},
			asOfFlag(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write the CSV report here (\"-\" for stdout)"},
			&cli.BoolFlag{Name: "upload", Usage: "Upload the CSV report to object storage"},
			&cli.BoolFlag{Name: "cache", Usage: "Memoise the plan in redis (CACHE_* settings)"},
			&cli.IntFlag{Name: "workers", Usage: "Concurrent evaluations", EnvVars: []string{"PLANNER_WORKERS"}},
			&cli.StringFlag{Name: "locale", Usage: "Number format for the summary, e.g. en or id", Value: "en"},
		},
		Action: runPlan,
	}
}

func runPlan(c *cli.Context) error {
	cfg := config.Load()
	ctx := c.Context

	asOf, err := parseAsOfFlag(c)
	if err != nil {
		return err
	}

	repo, cleanup, err := openSource(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	workers := c.Int("workers")
	if workers == 0 {
		workers = cfg.Planner.Workers
	}
	opts := []service.Option{
		service.WithRepository(repo),
		service.WithWorkers(workers),
		service.WithMaxBatchSize(cfg.Planner.MaxBatchSize),
	}
	if c.Bool("cache") {
		cacheCfg := cfg.Cache
		cacheCfg.Enabled = true
		planCache, err := cache.NewPlanCache(cacheCfg)
		if err != nil {
			log.Warn().Err(err).Msg("plan cache unavailable, continuing without it")
		} else {
			opts = append(opts, service.WithCache(planCache))
		}
	}
	svc := service.NewPlannerService(opts...)

	plan, err := svc.PlanFromRepository(ctx, asOf, domain.SKUFilter{
		SKUs:   c.StringSlice("sku"),
		Brands: c.StringSlice("brand"),
		Limit:  c.Int("limit"),
	})
	if err != nil {
		return err
	}

	var csvBuf bytes.Buffer
	if err := report.WritePlanCSV(&csvBuf, plan); err != nil {
		return err
	}

	switch out := c.String("output"); out {
	case "":
	case "-":
		if _, err := c.App.Writer.Write(csvBuf.Bytes()); err != nil {
			return err
		}
	default:
		if err := os.WriteFile(out, csvBuf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info().Str("path", out).Int("lines", len(plan.Lines)).Msg("plan report written")
	}

	if c.Bool("upload") {
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return err
		}
		key, err := storage.NewReportUploader(store, cfg.Storage.ReportPrefix).Upload(ctx, plan.AsOf, csvBuf.Bytes())
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "uploaded %s\n", key)
	}

	if c.String("output") == "-" {
		return nil
	}
	return report.WriteSummary(c.App.Writer, plan, report.NewFormatter(c.String("locale")))
}

// openSource picks the snapshot source from the flags: local files, a
// Postgres table, a Drive folder or an object storage prefix.
func openSource(ctx context.Context, c *cli.Context, cfg *config.Config) (repository.SnapshotRepository, func(), error) {
	noop := func() {}

	switch {
	case len(c.StringSlice("input")) > 0:
		return repository.NewFileSnapshotRepository(c.StringSlice("input")...), noop, nil

	case c.String("db-url") != "":
		db, err := postgres.Open("pgx", c.String("db-url"))
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.NewSnapshotRepository(db), func() { db.Close() }, nil

	case c.String("drive-folder-id") != "":
		if cfg.Drive.CredentialsJSON == "" {
			return nil, noop, fmt.Errorf("GOOGLE_DRIVE_CREDENTIALS_JSON is required for --drive-folder-id")
		}
		driveSvc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, noop, err
		}
		paths, err := drive.NewDownloader(driveSvc).DownloadSnapshots(ctx, drive.DownloadOptions{
			FolderID:    c.String("drive-folder-id"),
			DownloadDir: cfg.Drive.DownloadDir,
		})
		if err != nil {
			return nil, noop, err
		}
		return repository.NewFileSnapshotRepository(paths...), noop, nil

	case c.String("bucket-prefix") != "":
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return nil, noop, err
		}
		dir, err := os.MkdirTemp("", "planner-snapshots-")
		if err != nil {
			return nil, noop, err
		}
		cleanup := func() { _ = os.RemoveAll(dir) }
		paths, err := downloadBucketSnapshots(ctx, store, c.String("bucket-prefix"), dir)
		if err != nil {
			cleanup()
			return nil, noop, err
		}
		return repository.NewFileSnapshotRepository(paths...), cleanup, nil

	default:
		return nil, noop, fmt.Errorf("one of --input, --db-url, --drive-folder-id or --bucket-prefix is required")
	}
}

func downloadBucketSnapshots(ctx context.Context, store storage.ObjectStorage, prefix, dir string) ([]string, error) {
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var paths []string
	for i, obj := range objects {
		if !repository.IsSnapshotFile(obj.Key) {
			continue
		}
		dest := filepath.Join(dir, fmt.Sprintf("%03d-%s", i, filepath.Base(obj.Key)))
		if err := store.DownloadObject(ctx, obj.Key, dest); err != nil {
			return nil, err
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Load snapshot files into the sku_snapshots table",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "input", Aliases: []string{"i"}, Usage: "Snapshot file (.csv or .xlsx); repeatable", Required: true},
			newDBURLFlag(true),
			&cli.BoolFlag{Name: "migrate", Usage: "Create the sku_snapshots table if missing"},
		},
		Action: func(c *cli.Context) error {
			rows, err := repository.NewFileSnapshotRepository(c.StringSlice("input")...).ListSnapshots(c.Context, domain.SKUFilter{})
			if err != nil {
				return err
			}
			if err := service.ValidateRows(rows); err != nil {
				return err
			}

			db, err := postgres.Open("pgx", c.String("db-url"))
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if c.Bool("migrate") {
				if err := db.Migrate(c.Context); err != nil {
					return err
				}
			}

			n, err := postgres.NewSnapshotRepository(db).UpsertSnapshots(c.Context, rows)
			if err != nil {
				return err
			}
			return printf(c.App.Writer, "imported %d snapshots\n", n)
		},
	}
}

func printf(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

package cmd

import (
	"context"
	"fmt"

	"github.com/chxlky/trello-report/database"
	"github.com/chxlky/trello-report/integrations"
	"github.com/chxlky/trello-report/internal/config"
	"github.com/chxlky/trello-report/internal/output"
	"github.com/chxlky/trello-report/internal/pipeline"
	"github.com/chxlky/trello-report/internal/report"
	"go.uber.org/zap"
)

func rendererFromConfig(rc config.ReportConfig) (*report.Renderer, error) {
	loc, err := rc.Location()
	if err != nil {
		return nil, err
	}
	opts := report.Options{
		Title:           rc.Title,
		ActiveLists:     rc.ActiveLists,
		SuppressedLists: rc.SuppressedLists,
		MinContentLines: rc.MinContentLines,
		DateLayout:      rc.DateLayout,
		TimestampLayout: rc.TimestampLayout,
		Location:        loc,
	}
	return report.NewRenderer(opts, report.LogEcho(zap.L().Named("report"))), nil
}

func naming(oc config.OutputConfig) output.Naming {
	return output.Naming{Aggregate: oc.AggregateFile, MemberSuffix: oc.MemberSuffix}
}

type deps struct {
	trello   *integrations.TrelloClient
	pipeline *pipeline.Pipeline
	archive  *database.Archive
	close    func()
}

// buildPipeline wires the Trello client, renderer and every configured sink.
func buildPipeline(ctx context.Context, cfg *config.Config) (*deps, error) {
	renderer, err := rendererFromConfig(cfg.Report)
	if err != nil {
		return nil, err
	}
	names := naming(cfg.Output)
	d := &deps{
		trello: integrations.NewTrelloClient(cfg.Trello),
		close:  func() {},
	}

	sinks := []output.Sink{&output.FileSink{Dir: cfg.Output.Dir, Naming: names}}

	if cfg.Database.Path != "" {
		db, err := database.Init(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		d.archive = &database.Archive{DB: db, Naming: names}
		sinks = append(sinks, d.archive)
		d.close = func() {
			sqlDB, err := db.DB()
			if err != nil {
				return
			}
			if err := sqlDB.Close(); err != nil {
				zap.L().Error("Error closing database", zap.Error(err))
			} else {
				zap.L().Info("Database connection closed.")
			}
		}
	}

	if cfg.S3.Enabled() {
		client, err := integrations.NewS3Client(ctx, cfg.S3)
		if err != nil {
			d.close()
			return nil, err
		}
		s3Sink := &integrations.S3Sink{Client: client, Bucket: cfg.S3.Bucket, Prefix: cfg.S3.Prefix, Naming: names}
		if err := s3Sink.EnsureBucketExists(ctx); err != nil {
			d.close()
			return nil, fmt.Errorf("s3 sink: %w", err)
		}
		sinks = append(sinks, s3Sink)
	}

	if cfg.Google.DriveEnabled() {
		driveSink, err := integrations.NewDriveSink(ctx, cfg.Google, names)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("google drive sink: %w", err)
		}
		sinks = append(sinks, driveSink)
	}

	d.pipeline = &pipeline.Pipeline{
		Fetcher:            d.trello,
		Renderer:           renderer,
		Sinks:              sinks,
		MovementWindowDays: cfg.Report.MovementWindowDays,
	}
	return d, nil
}

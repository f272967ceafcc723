package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chxlky/trello-report/internal/output"
	"github.com/chxlky/trello-report/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newArchive(t *testing.T) *Archive {
	t.Helper()
	db, err := Init(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &Archive{DB: db, Naming: output.DefaultNaming()}
}

func TestArchive_PublishAndLoad(t *testing.T) {
	a := newArchive(t)
	ctx := context.Background()

	older := &report.Set{
		BoardID:     "B1",
		GeneratedAt: time.Date(2023, 1, 4, 9, 0, 0, 0, time.UTC),
		Aggregate:   report.Report{Body: "old\n"},
	}
	newer := &report.Set{
		BoardID:     "B1",
		GeneratedAt: time.Date(2023, 1, 5, 9, 0, 0, 0, time.UTC),
		Aggregate:   report.Report{Body: "all\n"},
		Members:     []report.Report{{Initials: "TG", Body: "tg\n"}},
	}
	require.NoError(t, a.Publish(ctx, older))
	require.NoError(t, a.Publish(ctx, newer))

	runs, err := a.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].GeneratedAt.Equal(newer.GeneratedAt))

	run, err := a.Run(ctx, runs[0].ID)
	require.NoError(t, err)
	require.Len(t, run.Reports, 2)
	assert.Equal(t, "out.txt", run.Reports[0].FileName)
	assert.Equal(t, "", run.Reports[0].Initials)
	assert.Equal(t, "tg\n", run.Reports[1].Body)
	assert.Equal(t, "TG_summary.txt", run.Reports[1].FileName)
}

func TestArchive_RunNotFound(t *testing.T) {
	a := newArchive(t)
	_, err := a.Run(context.Background(), "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

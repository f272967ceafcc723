package database

import (
	"context"
	"fmt"

	"github.com/chxlky/trello-report/internal/models"
	"github.com/chxlky/trello-report/internal/output"
	"github.com/chxlky/trello-report/internal/report"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Archive keeps every published report set in the database.
type Archive struct {
	DB     *gorm.DB
	Naming output.Naming
}

func (a *Archive) Name() string {
	return "archive"
}

func (a *Archive) Publish(ctx context.Context, set *report.Set) error {
	run := models.ReportRun{
		ID:          uuid.NewString(),
		BoardID:     set.BoardID,
		GeneratedAt: set.GeneratedAt,
	}
	for _, r := range set.All() {
		run.Reports = append(run.Reports, models.ReportRecord{
			Initials: r.Initials,
			FileName: a.Naming.FileName(r),
			Body:     r.Body,
		})
	}

	if result := a.DB.WithContext(ctx).Create(&run); result.Error != nil {
		return fmt.Errorf("error saving report run: %w", result.Error)
	}
	return nil
}

// Runs returns the most recent runs, newest first, without report bodies.
func (a *Archive) Runs(ctx context.Context, limit int) ([]models.ReportRun, error) {
	var runs []models.ReportRun
	result := a.DB.WithContext(ctx).Order("generated_at desc").Limit(limit).Find(&runs)
	if result.Error != nil {
		return nil, fmt.Errorf("error listing report runs: %w", result.Error)
	}
	return runs, nil
}

// Run loads one run with its reports.
func (a *Archive) Run(ctx context.Context, id string) (*models.ReportRun, error) {
	var run models.ReportRun
	result := a.DB.WithContext(ctx).Preload("Reports", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&run, "id = ?", id)
	if result.Error != nil {
		return nil, fmt.Errorf("error loading report run %s: %w", id, result.Error)
	}
	return &run, nil
}

package models

import "time"

// ReportRun is one archived pipeline run.
type ReportRun struct {
	ID          string `gorm:"primaryKey"`
	BoardID     string `gorm:"index"`
	GeneratedAt time.Time
	Reports     []ReportRecord `gorm:"foreignKey:RunID"`
	CreatedAt   time.Time
}

// ReportRecord holds the text of one rendered report. Initials is empty for
// the aggregate report.
type ReportRecord struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index"`
	Initials  string
	FileName  string
	Body      string
	CreatedAt time.Time
}

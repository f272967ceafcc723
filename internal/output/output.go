// Package output publishes rendered report sets to their destinations.
package output

import (
	"context"
	"errors"
	"strings"

	"github.com/chxlky/trello-report/internal/report"
	"go.uber.org/zap"
)

// Sink stores one rendered report set.
type Sink interface {
	Name() string
	Publish(ctx context.Context, set *report.Set) error
}

// Naming maps reports to file or object names.
type Naming struct {
	Aggregate    string
	MemberSuffix string
}

func DefaultNaming() Naming {
	return Naming{Aggregate: "out.txt", MemberSuffix: "_summary.txt"}
}

var unsafeChars = strings.NewReplacer("/", "_", "\\", "_", "..", "_")

func (n Naming) FileName(r report.Report) string {
	if r.IsAggregate() {
		return n.Aggregate
	}
	return unsafeChars.Replace(r.Initials) + n.MemberSuffix
}

// PublishAll hands set to every sink. A failing sink is logged and does not
// stop the others; the joined error is returned.
func PublishAll(ctx context.Context, sinks []Sink, set *report.Set) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Publish(ctx, set); err != nil {
			zap.L().Error("Failed to publish reports", zap.String("sink", s.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		zap.L().Info("Published reports", zap.String("sink", s.Name()), zap.Int("reports", len(set.All())))
	}
	return errors.Join(errs...)
}

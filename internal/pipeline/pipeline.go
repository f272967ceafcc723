// Package pipeline runs one report generation: fetch, normalize, group,
// render and publish.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chxlky/trello-report/integrations"
	"github.com/chxlky/trello-report/internal/board"
	"github.com/chxlky/trello-report/internal/models"
	"github.com/chxlky/trello-report/internal/output"
	"github.com/chxlky/trello-report/internal/report"
	"go.uber.org/zap"
)

type Fetcher interface {
	FetchBoard(ctx context.Context) (*models.Board, error)
	FetchCards(ctx context.Context) ([]models.Card, error)
}

type Pipeline struct {
	Fetcher            Fetcher
	Renderer           *report.Renderer
	Sinks              []output.Sink
	MovementWindowDays int
	Now                func() time.Time
}

// Run produces and publishes one report set. Rate-limited fetches degrade to
// empty data with a warning in the report; any other fetch error aborts the
// run. Publishing errors are returned together with the rendered set.
func (p *Pipeline) Run(ctx context.Context) (*report.Set, error) {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	var warnings []string

	raw, err := p.Fetcher.FetchBoard(ctx)
	if errors.Is(err, integrations.ErrGaveUp) {
		warnings = append(warnings, "board data unavailable: "+err.Error())
		raw = &models.Board{}
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch board: %w", err)
	}

	cards, err := p.Fetcher.FetchCards(ctx)
	if errors.Is(err, integrations.ErrGaveUp) {
		warnings = append(warnings, "card data unavailable: "+err.Error())
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch cards: %w", err)
	}
	// the board payload carries cards too, but without customFieldItems
	raw.Cards = cards

	snapshot := board.Normalize(raw)
	for _, a := range snapshot.Anomalies {
		warnings = append(warnings, a.String())
	}

	grouping := board.Group(snapshot)
	for _, id := range grouping.UnknownMembers {
		warnings = append(warnings, fmt.Sprintf("assignee %s is not a member of the board", id))
	}

	window := p.MovementWindowDays
	if window <= 0 {
		window = board.DefaultMovementWindowDays
	}
	moves := board.ExtractMovements(snapshot.Actions, now, window)

	zap.L().Info("Board normalized",
		zap.Int("lists", len(snapshot.Lists)),
		zap.Int("cards", len(snapshot.Cards)),
		zap.Int("members", len(snapshot.Members)),
		zap.Int("movements", len(moves)),
		zap.Int("warnings", len(warnings)),
	)

	set := p.Renderer.Render(report.Input{
		Snapshot:  snapshot,
		Grouping:  grouping,
		Movements: moves,
		Warnings:  warnings,
		Now:       now,
	})

	if err := output.PublishAll(ctx, p.Sinks, set); err != nil {
		return set, fmt.Errorf("failed to publish reports: %w", err)
	}
	return set, nil
}

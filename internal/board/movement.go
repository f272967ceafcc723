package board

import (
	"time"

	"go.uber.org/zap"
)

// DefaultMovementWindowDays is the trailing window for reported moves.
const DefaultMovementWindowDays = 31

type Movement struct {
	CardName string
	From     string
	To       string
	Date     time.Time
}

// ExtractMovements returns list-to-list moves whose age in whole days is
// below windowDays, in action order. Repeated moves of one card are kept.
func ExtractMovements(actions []Action, now time.Time, windowDays int) []Movement {
	var moves []Movement
	for _, a := range actions {
		if a.Type != "updateCard" || !a.IsMove {
			continue
		}
		date, err := parseActionDate(a.Date)
		if err != nil {
			zap.L().Warn("Skipping action with unparseable date", zap.String("date", a.Date), zap.Error(err))
			continue
		}
		if ageInDays(now, date) >= windowDays {
			continue
		}
		moves = append(moves, Movement{
			CardName: a.CardName,
			From:     a.ListBefore,
			To:       a.ListAfter,
			Date:     date,
		})
	}
	return moves
}

func parseActionDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if len(s) >= 10 {
		if d, derr := time.Parse(time.DateOnly, s[:10]); derr == nil {
			return d, nil
		}
	}
	return time.Time{}, err
}

func ageInDays(now, t time.Time) int {
	return int(now.Sub(t) / (24 * time.Hour))
}

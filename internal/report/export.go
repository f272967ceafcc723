package report

import (
	"strings"

	"github.com/chxlky/trello-report/internal/board"
)

// RenderExport summarizes a board read from a Trello JSON export: every open
// list with the names of the cards attached to it.
func (r *Renderer) RenderExport(s *board.Snapshot) Report {
	b := NewBuilder(r.echo)

	names := make([]string, 0, len(s.Lists))
	for _, l := range s.Lists {
		names = append(names, l.Name)
	}
	b.Printf("%d open lists extracted: [%s]", len(s.Lists), strings.Join(names, ", "))
	b.Printf("%d cards extracted", len(s.Cards))
	for _, a := range s.Anomalies {
		b.Println("ERROR: " + a.String() + ". Please check the json file directly.")
	}

	for _, l := range s.Lists {
		cards := s.CardsInList(l.ID)
		b.Printf("\nLIST: %s  -->  %d card(s)", l.Name, len(cards))
		for _, c := range cards {
			b.Println("   " + c.Name)
		}
	}
	return Report{Body: b.String()}
}

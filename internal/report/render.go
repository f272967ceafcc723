// Package report renders the aggregate and per-member plain text reports.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/chxlky/trello-report/internal/board"
)

const separator = "-------------------------------------"

// Report is one rendered text. Initials is empty for the aggregate report.
type Report struct {
	Initials string
	Body     string
}

func (r Report) IsAggregate() bool {
	return r.Initials == ""
}

type Set struct {
	BoardID     string
	GeneratedAt time.Time
	Aggregate   Report
	Members     []Report
}

// All returns the aggregate report followed by the member reports.
func (s *Set) All() []Report {
	return append([]Report{s.Aggregate}, s.Members...)
}

func (s *Set) Member(initials string) (Report, bool) {
	for _, r := range s.Members {
		if r.Initials == initials {
			return r, true
		}
	}
	return Report{}, false
}

// Input is everything a run hands to the renderer.
type Input struct {
	Snapshot  *board.Snapshot
	Grouping  *board.Grouping
	Movements []board.Movement
	Warnings  []string
	Now       time.Time
}

type Renderer struct {
	opts Options
	echo Echo
}

func NewRenderer(opts Options, echo Echo) *Renderer {
	return &Renderer{opts: opts.withDefaults(), echo: echo}
}

func (r *Renderer) Render(in Input) *Set {
	generated := in.Now.In(r.opts.Location).Format(r.opts.TimestampLayout)
	set := &Set{GeneratedAt: in.Now}
	if in.Snapshot != nil {
		set.BoardID = in.Snapshot.BoardID
	}

	agg := NewBuilder(r.echo)
	agg.Printf("%s - generated %s", r.opts.Title, generated)
	for _, w := range in.Warnings {
		agg.Println("WARNING: " + w)
	}

	agg.Println("\n" + separator + "\nPart 1: Cards grouped by list then priority, with date and owner initials")
	for _, lg := range in.Grouping.Lists {
		agg.Printf("\n%s : %d cards", lg.List.Name, lg.Buckets.Total())
		for _, p := range board.Priorities {
			cards := lg.Buckets.Cards(p)
			if len(cards) == 0 {
				continue
			}
			agg.Printf("  %s %d cards", p.Heading(), len(cards))
			for _, e := range cards {
				agg.Println(r.cardLine(e))
			}
		}
	}

	agg.Println("\n" + separator + "\nPart 2: Card movements in the last month\n")
	for _, m := range in.Movements {
		agg.Printf("  %s : %s --> %s", m.CardName, m.From, m.To)
	}

	type memberSection struct {
		initials string
		lines    []string
		count    int
	}
	sections := make([]memberSection, 0, len(in.Grouping.Members))
	for _, m := range in.Grouping.Members {
		lines, count := r.memberBody(m)
		sections = append(sections, memberSection{initials: m.Initials, lines: lines, count: count})
	}

	for _, sec := range sections {
		if sec.initials != board.Unassigned {
			continue
		}
		agg.Println("\n" + separator + "\nPart 3: UNASSIGNED cards in active lists\n")
		agg.Printf("  Number of UNASSIGNED cards in active lists: %d", sec.count)
		if sec.count > 0 {
			agg.Lines(sec.lines)
		}
	}
	set.Aggregate = Report{Body: agg.String()}

	// member reports are echoed only once the aggregate is complete
	for _, sec := range sections {
		set.Members = append(set.Members, r.memberReport(sec.initials, generated, sec.lines, sec.count))
	}
	return set
}

// memberReport substitutes a single "Nothing to report" line for a body
// with fewer than MinContentLines card lines.
func (r *Renderer) memberReport(initials, generated string, body []string, count int) Report {
	b := NewBuilder(r.echo)
	b.Printf("%s for %s", r.opts.Title, initials)
	b.Printf(" generated %s", generated)
	if count < r.opts.MinContentLines {
		b.Printf("\nNothing to report for member %s", initials)
	} else {
		b.Lines(body)
	}
	return Report{Initials: initials, Body: b.String()}
}

// memberBody lists a member's cards in active lists and returns the lines
// together with the number of card lines among them.
func (r *Renderer) memberBody(m *board.MemberCards) ([]string, int) {
	var lines []string
	count := 0
	for _, name := range m.ListNames() {
		if !r.opts.active(name) {
			continue
		}
		buckets := m.List(name)
		if buckets.Total() == 0 {
			continue
		}
		lines = append(lines, "", name+":")
		for _, p := range board.Priorities {
			cards := buckets.Cards(p)
			if len(cards) == 0 {
				continue
			}
			lines = append(lines, "  "+p.Heading())
			for _, e := range cards {
				lines = append(lines, r.cardLine(e))
				count++
			}
		}
	}
	return lines, count
}

func (r *Renderer) cardLine(e board.CardEntry) string {
	date := "n/a"
	if e.HasCreated {
		date = e.Created.In(r.opts.Location).Format(r.opts.DateLayout)
	}
	var owner string
	if e.Owned() {
		owner = " - " + strings.Join(e.Assignees, ", ")
	}
	return fmt.Sprintf("    %s (%s%s)", e.Card.Name, date, owner)
}

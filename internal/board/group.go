package board

import (
	"time"

	"go.uber.org/zap"
)

// Unassigned is the synthetic member bucket for cards with no assignee.
const Unassigned = "UNASSIGNED"

// CardEntry is a card as it appears in a report.
type CardEntry struct {
	Card       Card
	Created    time.Time
	HasCreated bool
	Assignees  []string // initials, in idMembers order
}

func (e CardEntry) Owned() bool {
	return len(e.Assignees) > 0
}

// Buckets holds cards per priority. The zero value is empty and ready to use.
type Buckets struct {
	cards map[Priority][]CardEntry
}

func (b *Buckets) add(p Priority, e CardEntry) {
	if b.cards == nil {
		b.cards = make(map[Priority][]CardEntry)
	}
	b.cards[p] = append(b.cards[p], e)
}

func (b *Buckets) Cards(p Priority) []CardEntry {
	if b == nil {
		return nil
	}
	return b.cards[p]
}

func (b *Buckets) Count(p Priority) int {
	return len(b.Cards(p))
}

func (b *Buckets) Total() int {
	n := 0
	for _, p := range Priorities {
		n += b.Count(p)
	}
	return n
}

type ListGroup struct {
	List    List
	Buckets *Buckets
}

// MemberCards is one member's cards keyed by list name, then priority.
type MemberCards struct {
	Initials string

	lists     map[string]*Buckets
	listOrder []string
}

func newMemberCards(initials string) *MemberCards {
	return &MemberCards{Initials: initials, lists: make(map[string]*Buckets)}
}

func (m *MemberCards) ensure(listName string) *Buckets {
	b, ok := m.lists[listName]
	if !ok {
		b = &Buckets{}
		m.lists[listName] = b
		m.listOrder = append(m.listOrder, listName)
	}
	return b
}

// ListNames returns every list with an entry, in board order.
func (m *MemberCards) ListNames() []string {
	return m.listOrder
}

// HasList distinguishes "no section" from "empty section".
func (m *MemberCards) HasList(name string) bool {
	_, ok := m.lists[name]
	return ok
}

// List never returns nil.
func (m *MemberCards) List(name string) *Buckets {
	if b, ok := m.lists[name]; ok {
		return b
	}
	return &Buckets{}
}

type Grouping struct {
	Lists   []ListGroup
	Members []*MemberCards // known members in board order, then Unassigned
	Unowned []CardEntry

	// UnknownMembers holds assignee ids that matched no board member.
	UnknownMembers []string

	members map[string]*MemberCards
}

// Member returns the bucket for initials, or nil when there is none.
func (g *Grouping) Member(initials string) *MemberCards {
	return g.members[initials]
}

func (g *Grouping) member(initials string) *MemberCards {
	m, ok := g.members[initials]
	if !ok {
		m = newMemberCards(initials)
		g.members[initials] = m
		g.Members = append(g.Members, m)
	}
	return m
}

// Group partitions the snapshot's cards by list and priority and builds the
// per-member index. Cards with an anomalous list reference are skipped.
func Group(s *Snapshot) *Grouping {
	g := &Grouping{members: make(map[string]*MemberCards)}
	for _, m := range s.Members {
		g.member(m.Initials)
	}
	unassigned := g.member(Unassigned)
	unknown := make(map[string]bool)

	for _, l := range s.Lists {
		for _, m := range g.Members {
			m.ensure(l.Name)
		}
		group := ListGroup{List: l, Buckets: &Buckets{}}

		for _, c := range s.Cards {
			if c.ListID != l.ID || c.ListMatches != 1 {
				continue
			}
			entry := newCardEntry(s, c, unknown)
			group.Buckets.add(c.Priority, entry)

			if !entry.Owned() {
				g.Unowned = append(g.Unowned, entry)
				unassigned.ensure(l.Name).add(c.Priority, entry)
				continue
			}
			for _, initials := range entry.Assignees {
				g.member(initials).ensure(l.Name).add(c.Priority, entry)
			}
		}
		g.Lists = append(g.Lists, group)
	}

	for _, c := range s.Cards {
		for _, id := range c.MemberIDs {
			if unknown[id] {
				g.UnknownMembers = append(g.UnknownMembers, id)
				delete(unknown, id)
			}
		}
	}
	return g
}

func newCardEntry(s *Snapshot, c Card, unknown map[string]bool) CardEntry {
	entry := CardEntry{Card: c}
	if created, err := CreatedAt(c.ID); err == nil {
		entry.Created = created
		entry.HasCreated = true
	} else {
		zap.L().Warn("Card id carries no creation time", zap.String("cardID", c.ID), zap.Error(err))
	}

	seen := make(map[string]bool, len(c.MemberIDs))
	for _, id := range c.MemberIDs {
		m, ok := s.Member(id)
		if !ok {
			unknown[id] = true
			continue
		}
		if seen[m.Initials] {
			continue
		}
		seen[m.Initials] = true
		entry.Assignees = append(entry.Assignees, m.Initials)
	}
	return entry
}

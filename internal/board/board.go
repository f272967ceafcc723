// Package board turns raw Trello payloads into a read-only snapshot and
// derives the groupings the reports are built from.
package board

import (
	"fmt"

	"github.com/chxlky/trello-report/internal/models"
	"go.uber.org/zap"
)

type List struct {
	ID   string
	Name string
}

type Card struct {
	ID          string
	Name        string
	ListID      string
	MemberIDs   []string
	FieldValues []FieldValue
	Priority    Priority

	// ListMatches is the number of board lists (open or closed) whose id
	// equals ListID. Anything other than 1 is an integrity anomaly.
	ListMatches int
}

type Member struct {
	ID       string
	Initials string
	FullName string
}

type FieldDefinition struct {
	ID      string
	Name    string
	Options []Option
}

type Option struct {
	ID   string
	Text string
}

type FieldValue struct {
	FieldID  string
	OptionID string
}

type Action struct {
	Type       string
	Date       string
	CardName   string
	ListBefore string
	ListAfter  string
	IsMove     bool
}

// Anomaly describes a card whose list reference did not resolve to exactly
// one list.
type Anomaly struct {
	CardID   string
	CardName string
	ListID   string
	Matches  int
}

func (a Anomaly) String() string {
	if a.Matches == 0 {
		return fmt.Sprintf("list %s for card %q did not match any list on the board", a.ListID, a.CardName)
	}
	return fmt.Sprintf("list %s for card %q matched %d lists on the board", a.ListID, a.CardName, a.Matches)
}

// Snapshot is the normalized board. It is built once per run and must not be
// modified afterwards.
type Snapshot struct {
	BoardID      string
	Lists        []List // open lists, board order
	Cards        []Card // open cards, API order
	Members      []Member
	CustomFields []FieldDefinition
	Actions      []Action
	Anomalies    []Anomaly

	// ClosedLists holds ids of archived lists; cards in them are dropped
	// from grouping without a warning.
	ClosedLists map[string]bool

	memberByID map[string]Member
}

// Normalize filters archived lists and cards, indexes members, validates
// every card's list reference and resolves each card's priority.
func Normalize(raw *models.Board) *Snapshot {
	s := &Snapshot{
		ClosedLists: make(map[string]bool),
		memberByID:  make(map[string]Member),
	}
	if raw == nil {
		return s
	}
	s.BoardID = raw.ID

	listCount := make(map[string]int, len(raw.Lists))
	for _, l := range raw.Lists {
		listCount[l.ID]++
		if l.Closed {
			s.ClosedLists[l.ID] = true
			continue
		}
		s.Lists = append(s.Lists, List{ID: l.ID, Name: l.Name})
	}

	for _, m := range raw.Members {
		member := Member{ID: m.ID, Initials: m.Initials, FullName: m.FullName}
		s.Members = append(s.Members, member)
		s.memberByID[m.ID] = member
	}

	for _, f := range raw.CustomFields {
		def := FieldDefinition{ID: f.ID, Name: f.Name}
		for _, o := range f.Options {
			def.Options = append(def.Options, Option{ID: o.ID, Text: o.Value.Text})
		}
		s.CustomFields = append(s.CustomFields, def)
	}

	for _, a := range raw.Actions {
		act := Action{Type: a.Type, Date: a.Date, IsMove: a.IsListMove()}
		if a.Data.Card != nil {
			act.CardName = a.Data.Card.Name
		}
		if act.IsMove {
			act.ListBefore = a.Data.ListBefore.Name
			act.ListAfter = a.Data.ListAfter.Name
		}
		s.Actions = append(s.Actions, act)
	}

	resolver := NewResolver(s.CustomFields)
	for _, c := range raw.Cards {
		if c.Closed {
			continue
		}
		card := Card{
			ID:          c.ID,
			Name:        c.Name,
			ListID:      c.IDList,
			MemberIDs:   c.IDMembers,
			ListMatches: listCount[c.IDList],
		}
		for _, item := range c.CustomFieldItems {
			card.FieldValues = append(card.FieldValues, FieldValue{FieldID: item.IDCustomField, OptionID: item.IDValue})
		}
		card.Priority = resolver.Resolve(card).Label
		if card.ListMatches != 1 {
			anomaly := Anomaly{CardID: c.ID, CardName: c.Name, ListID: c.IDList, Matches: card.ListMatches}
			s.Anomalies = append(s.Anomalies, anomaly)
			zap.L().Warn("Card list reference is not unique", zap.String("cardID", c.ID), zap.Int("matches", card.ListMatches))
		}
		s.Cards = append(s.Cards, card)
	}

	return s
}

// Member looks up a board member by id.
func (s *Snapshot) Member(id string) (Member, bool) {
	m, ok := s.memberByID[id]
	return m, ok
}

// CardsInList returns the open cards attached to the list, in API order.
// Cards with an anomalous list reference are never attached.
func (s *Snapshot) CardsInList(listID string) []Card {
	var cards []Card
	for _, c := range s.Cards {
		if c.ListID == listID && c.ListMatches == 1 {
			cards = append(cards, c)
		}
	}
	return cards
}

package board

import (
	"testing"

	"github.com/chxlky/trello-report/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(entries []CardEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Card.Name)
	}
	return out
}

func TestGroup_ListsAndPriorities(t *testing.T) {
	s := Normalize(sampleBoard())
	g := Group(s)

	require.Len(t, g.Lists, 3)
	inbox := g.Lists[0]
	assert.Equal(t, "Inbox", inbox.List.Name)
	assert.Equal(t, []string{"Leaky faucet", "Boiler"}, names(inbox.Buckets.Cards(High)))
	assert.Empty(t, inbox.Buckets.Cards(Medium))
	assert.Equal(t, []string{"Paint shed"}, names(inbox.Buckets.Cards(Low)))
	assert.Equal(t, []string{"Fix gate"}, names(inbox.Buckets.Cards(Other)))
}

func TestGroup_CountsMatchListTotals(t *testing.T) {
	s := Normalize(sampleBoard())
	g := Group(s)

	for _, lg := range g.Lists {
		sum := 0
		for _, p := range Priorities {
			sum += lg.Buckets.Count(p)
		}
		assert.Equal(t, len(s.CardsInList(lg.List.ID)), sum, lg.List.Name)
		assert.Equal(t, sum, lg.Buckets.Total())
	}
}

func TestGroup_MemberIndexCompleteness(t *testing.T) {
	g := Group(Normalize(sampleBoard()))

	var initials []string
	for _, m := range g.Members {
		initials = append(initials, m.Initials)
		assert.Equal(t, []string{"Inbox", "In-house labor - in progress", "Complete"}, m.ListNames())
		for _, name := range m.ListNames() {
			assert.True(t, m.HasList(name))
		}
	}
	assert.Equal(t, []string{"TG", "AB", "CD", Unassigned}, initials)

	cd := g.Member("CD")
	require.NotNil(t, cd)
	assert.Zero(t, cd.List("Inbox").Total())
	assert.False(t, cd.HasList("Old stuff"))
	assert.NotNil(t, cd.List("Old stuff"))
}

func TestGroup_Assignees(t *testing.T) {
	g := Group(Normalize(sampleBoard()))

	ab := g.Member("AB").List("Inbox")
	assert.Equal(t, []string{"Boiler"}, names(ab.Cards(High)))
	assert.Equal(t, []string{"Paint shed"}, names(ab.Cards(Low)))
	assert.Equal(t, []string{"Fix gate"}, names(ab.Cards(Other)))

	tg := g.Member("TG")
	assert.Equal(t, []string{"Paint shed"}, names(tg.List("Inbox").Cards(Low)))
	assert.Equal(t, []string{"Roof leak"}, names(tg.List("In-house labor - in progress").Cards(High)))

	paint := tg.List("Inbox").Cards(Low)[0]
	assert.Equal(t, []string{"TG", "AB"}, paint.Assignees)
	assert.True(t, paint.HasCreated)
}

func TestGroup_UnownedOnlyInUnassigned(t *testing.T) {
	g := Group(Normalize(sampleBoard()))

	assert.Equal(t, []string{"Leaky faucet"}, names(g.Unowned))
	assert.Equal(t, []string{"Leaky faucet"}, names(g.Member(Unassigned).List("Inbox").Cards(High)))
	for _, m := range g.Members {
		if m.Initials == Unassigned {
			continue
		}
		for _, e := range m.List("Inbox").Cards(High) {
			assert.NotEqual(t, "Leaky faucet", e.Card.Name, m.Initials)
		}
	}
}

func TestGroup_SkipsAnomaliesAndClosedLists(t *testing.T) {
	g := Group(Normalize(sampleBoard()))

	for _, lg := range g.Lists {
		for _, p := range Priorities {
			for _, e := range lg.Buckets.Cards(p) {
				assert.NotEqual(t, "Orphan", e.Card.Name)
				assert.NotEqual(t, "In archived list", e.Card.Name)
			}
		}
	}
}

func TestGroup_UnknownMembers(t *testing.T) {
	g := Group(Normalize(&models.Board{
		Lists:   []models.List{{ID: "L1", Name: "Inbox"}},
		Members: []models.Member{{ID: "M1", Initials: "TG"}},
		Cards: []models.Card{
			{ID: "639b3d7f0000000000000000", Name: "Ghost", IDList: "L1", IDMembers: []string{"gone"}},
			{ID: "639b3d7f0000000000000001", Name: "Mixed", IDList: "L1", IDMembers: []string{"gone", "M1"}},
		},
	}))

	assert.Equal(t, []string{"gone"}, g.UnknownMembers)
	assert.Equal(t, []string{"Ghost"}, names(g.Unowned))
	assert.Equal(t, []string{"Mixed"}, names(g.Member("TG").List("Inbox").Cards(Other)))
}

func TestGroup_EmptyBoard(t *testing.T) {
	g := Group(Normalize(nil))
	require.Len(t, g.Members, 1)
	assert.Equal(t, Unassigned, g.Members[0].Initials)
	assert.Empty(t, g.Lists)
}

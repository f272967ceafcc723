package board

import "github.com/chxlky/trello-report/internal/models"

const (
	priorityFieldID = "5fecb023cbfde82268ed7686"
	optLow          = "5fecb023cbfde82268ed7687"
	optMedium       = "5fecb023cbfde82268ed7688"
	optHigh         = "5fecb023cbfde82268ed7689"
)

func priorityField() models.CustomField {
	opt := func(id, text string) models.CustomFieldOption {
		o := models.CustomFieldOption{ID: id, IDCustomField: priorityFieldID}
		o.Value.Text = text
		return o
	}
	return models.CustomField{
		ID:   priorityFieldID,
		Name: "Priority",
		Type: "list",
		Options: []models.CustomFieldOption{
			opt(optLow, "Low"),
			opt(optMedium, "Medium"),
			opt(optHigh, "High"),
		},
	}
}

func withPriority(c models.Card, optionID string) models.Card {
	c.CustomFieldItems = append(c.CustomFieldItems, models.CustomFieldItem{
		IDCustomField: priorityFieldID,
		IDValue:       optionID,
		IDModel:       c.ID,
		ModelType:     "card",
	})
	return c
}

func sampleBoard() *models.Board {
	return &models.Board{
		ID: "5fecaa2517be8365eb37fe77",
		Lists: []models.List{
			{ID: "L1", Name: "Inbox"},
			{ID: "L2", Name: "In-house labor - in progress"},
			{ID: "L3", Name: "Old stuff", Closed: true},
			{ID: "L4", Name: "Complete"},
		},
		Members: []models.Member{
			{ID: "M1", Initials: "TG", FullName: "Tom Grundy"},
			{ID: "M2", Initials: "AB", FullName: "Alice Baker"},
			{ID: "M3", Initials: "CD", FullName: "Carl Dunn"},
		},
		CustomFields: []models.CustomField{priorityField()},
		Cards: []models.Card{
			withPriority(models.Card{ID: "639b3d7f0000000000000001", Name: "Leaky faucet", IDList: "L1"}, optHigh),
			withPriority(models.Card{ID: "639b3d800000000000000002", Name: "Paint shed", IDList: "L1", IDMembers: []string{"M1", "M2"}}, optLow),
			{ID: "639b3d810000000000000003", Name: "Fix gate", IDList: "L1", IDMembers: []string{"M2"}},
			withPriority(models.Card{ID: "639b3d820000000000000004", Name: "Roof leak", IDList: "L2", IDMembers: []string{"M1"}}, optHigh),
			{ID: "639b3d830000000000000005", Name: "Archived card", IDList: "L1", Closed: true},
			{ID: "639b3d840000000000000006", Name: "In archived list", IDList: "L3"},
			{ID: "639b3d850000000000000007", Name: "Orphan", IDList: "L9"},
			withPriority(models.Card{ID: "639b3d860000000000000008", Name: "Boiler", IDList: "L1", IDMembers: []string{"M2"}}, optHigh),
		},
	}
}

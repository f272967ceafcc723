package models

// Board is the payload of GET /boards/{id} with lists, members, custom
// fields and actions expanded. Cards are fetched separately because the
// board request does not return customFieldItems.
type Board struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Closed       bool          `json:"closed"`
	Lists        []List        `json:"lists"`
	Cards        []Card        `json:"cards"`
	Members      []Member      `json:"members"`
	CustomFields []CustomField `json:"customFields"`
	Actions      []Action      `json:"actions"`
}

type List struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Closed bool    `json:"closed"`
	Pos    float64 `json:"pos"`
}

type Card struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	IDList           string            `json:"idList"`
	IDBoard          string            `json:"idBoard"`
	Closed           bool              `json:"closed"`
	IDMembers        []string          `json:"idMembers"`
	CustomFieldItems []CustomFieldItem `json:"customFieldItems"`
	ShortLink        string            `json:"shortLink"`
}

type Member struct {
	ID       string `json:"id"`
	Initials string `json:"initials"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

// CustomField is a board level field definition. Options are only present
// for fields of type "list".
type CustomField struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Type    string              `json:"type"`
	Options []CustomFieldOption `json:"options"`
}

type CustomFieldOption struct {
	ID            string `json:"id"`
	IDCustomField string `json:"idCustomField"`
	Value         struct {
		Text string `json:"text"`
	} `json:"value"`
	Color string `json:"color"`
}

// CustomFieldItem is a value set on a card. IDValue references an option
// of a list-type field; other field types carry a free-form value object
// which is not needed here.
type CustomFieldItem struct {
	ID            string `json:"id"`
	IDValue       string `json:"idValue"`
	IDCustomField string `json:"idCustomField"`
	IDModel       string `json:"idModel"`
	ModelType     string `json:"modelType"`
}

type Action struct {
	ID   string     `json:"id"`
	Type string     `json:"type"` // e.g., "updateCard"
	Date string     `json:"date"`
	Data ActionData `json:"data"`
}

type ActionData struct {
	Card       *ActionRef `json:"card,omitempty"`
	Board      *ActionRef `json:"board,omitempty"`
	ListBefore *ActionRef `json:"listBefore,omitempty"`
	ListAfter  *ActionRef `json:"listAfter,omitempty"`
}

type ActionRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortLink string `json:"shortLink,omitempty"`
}

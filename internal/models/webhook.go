package models

// TrelloWebhookPayload is the body Trello POSTs to a registered callback URL.
type TrelloWebhookPayload struct {
	Action Action `json:"action"`
	Model  struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"model"`
}

// IsListMove reports whether the action moved a card from one list to another.
func (a Action) IsListMove() bool {
	return a.Type == "updateCard" && a.Data.ListBefore != nil && a.Data.ListAfter != nil
}

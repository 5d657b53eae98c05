package notifyuser

type Output struct {
	UserID    string `json:"userId"`
	Channel   string `json:"channel"`
	MessageID string `json:"messageId"`
}

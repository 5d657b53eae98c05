package cachesession

type Output struct {
	UserID     string `json:"userId"`
	Token      string `json:"token"`
	TTLSeconds int    `json:"ttlSeconds"`
}

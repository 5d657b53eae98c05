package registeruser

import "cmdkit/internal/commands/cachesession"

type Output struct {
	UserID  string               `json:"userId"`
	Tier    string               `json:"tier"`
	Session *cachesession.Output `json:"session"`
}

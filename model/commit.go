package model

import (
	"strings"
	"time"
)

type Commit struct {
	ID             string `json:"commit"`
	Author         string
	AuthorEmail    string
	AuthorDate     time.Time
	Committer      string
	CommitterEmail string
	CommitterDate  time.Time
	Subject        string
	Body           string
}

func (c *Commit) ShortID() string {
	return ShortID(c.ID)
}

// Message returns the full commit message: the subject, then the body
// separated by a blank line.
func (c *Commit) Message() string {
	body := strings.TrimSpace(c.Body)
	if body == "" {
		return c.Subject
	}
	return c.Subject + "\n\n" + body
}

func ShortID(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}

package storage

import "time"

// Session is a persisted bearer token. It plays the role a browser auth
// cookie would.
type Session struct {
	Name      string
	Token     string
	APIURL    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

const DefaultSessionName = "default"

const (
	SettingTaskFilter = "task_filter"
	SettingTagSearch  = "tag_search"
)

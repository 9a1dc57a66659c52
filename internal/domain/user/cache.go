package user

import "time"

// UsernameCache holds id to username lookups. Usernames never change, so
// entries only expire by ttl.
type UsernameCache interface {
	GetUsername(userID string) (string, bool)
	SetUsername(userID, username string, ttl time.Duration)
	Clear()
}

type noopCache struct{}

func (noopCache) GetUsername(string) (string, bool) {
	return "", false
}

func (noopCache) SetUsername(string, string, time.Duration) {}

func (noopCache) Clear() {}

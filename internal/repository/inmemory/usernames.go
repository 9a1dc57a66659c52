package inmemory

import (
	"sync"
	"time"
)

// UsernameCache is a TTL cache of user id to username.
type UsernameCache struct {
	mu    sync.RWMutex
	items map[string]usernameItem
	now   func() time.Time
}

type usernameItem struct {
	value     string
	expiresAt time.Time
}

func NewUsernameCache() *UsernameCache {
	return &UsernameCache{
		items: make(map[string]usernameItem),
		now:   time.Now,
	}
}

func (c *UsernameCache) GetUsername(userID string) (string, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[userID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return "", false
	}

	return item.value, true
}

func (c *UsernameCache) SetUsername(userID, username string, ttl time.Duration) {
	if username == "" || ttl <= 0 {
		c.mu.Lock()
		delete(c.items, userID)
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.items[userID] = usernameItem{
		value:     username,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *UsernameCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]usernameItem)
	c.mu.Unlock()
}

package inmemory

import (
	"context"
	"sync"
	"time"

	userdomain "occasion-ledger/internal/domain/user"
)

type UserRepository struct {
	mu         sync.RWMutex
	users      map[string]userdomain.User
	byUsername map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:      make(map[string]userdomain.User),
		byUsername: make(map[string]string),
	}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[user.Username]; ok {
		return userdomain.ErrUsernameTaken
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *UserRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *UserRepository) GetUsersByIDs(ctx context.Context, userIDs []string) ([]userdomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]userdomain.User, 0, len(userIDs))
	for _, id := range userIDs {
		if user, ok := r.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *UserRepository) exists(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[userID]
	return ok
}

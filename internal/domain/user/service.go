package user

import (
	"context"
	"errors"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxUsernameLength = 150

type Service struct {
	repo     Repository
	cache    UsernameCache
	cacheTTL time.Duration
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cache: noopCache{}}
}

// WithCache enables username caching for lookups made through Usernames.
func (s *Service) WithCache(cache UsernameCache, ttl time.Duration) *Service {
	if cache != nil && ttl > 0 {
		s.cache = cache
		s.cacheTTL = ttl
	}
	return s
}

func (s *Service) Register(ctx context.Context, username, email string) (*User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return nil, &FieldError{Field: "username", Err: ErrUsernameRequired}
	case utf8.RuneCountInString(username) > maxUsernameLength:
		return nil, &FieldError{Field: "username", Err: ErrUsernameTooLong}
	}

	user := User{ID: uuid.NewString(), Username: username}
	if email = strings.TrimSpace(email); email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return nil, &FieldError{Field: "email", Err: ErrInvalidEmail}
		}
		user.Email = &email
	}

	taken, err := s.repo.IsUsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &FieldError{Field: "username", Err: ErrUsernameTaken}
	}

	if err := s.repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, &FieldError{Field: "username", Err: ErrUsernameTaken}
		}
		return nil, err
	}

	s.cache.SetUsername(user.ID, user.Username, s.cacheTTL)
	return &user, nil
}

// Usernames resolves ids to usernames. Ids that are malformed or belong to no
// user are left out of the result.
func (s *Service) Usernames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	canonical := make(map[string]string, len(userIDs))
	var missing []string
	for _, raw := range userIDs {
		if _, ok := canonical[raw]; ok {
			continue
		}
		parsed, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		id := parsed.String()
		canonical[raw] = id
		if _, ok := names[id]; ok || slices.Contains(missing, id) {
			continue
		}
		if name, ok := s.cache.GetUsername(id); ok {
			names[id] = name
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		users, err := s.repo.GetUsersByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			names[user.ID] = user.Username
			s.cache.SetUsername(user.ID, user.Username, s.cacheTTL)
		}
	}

	// Keyed by the ids as given, so callers can look up what they passed in.
	result := make(map[string]string, len(canonical))
	for raw, id := range canonical {
		if name, ok := names[id]; ok {
			result[raw] = name
		}
	}
	return result, nil
}

package user

import "context"

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]User, error)
}
